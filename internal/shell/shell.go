// Package shell is the interactive menu front end over the auth, profile and
// rental services. It owns every prompt and every line of output; the
// services never touch the console.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/term"

	"rentctl/internal/auth"
	"rentctl/internal/errs"
	"rentctl/internal/profile"
	"rentctl/internal/rental"
)

var errExit = errors.New("exit")

// Services are the operations the menus route to.
type Services struct {
	Auth     *auth.Service
	Profiles *profile.Service
	Rentals  *rental.Service
}

type Shell struct {
	in       *bufio.Reader
	out      io.Writer
	secret   func(label string) (string, error)
	auth     *auth.Service
	profiles *profile.Service
	rentals  *rental.Service
	logger   *zap.Logger
	session  *auth.Session
}

// New builds a shell reading from in and writing to out. Passwords are read
// without echo when in is a terminal.
func New(in io.Reader, out io.Writer, svc Services, logger *zap.Logger) *Shell {
	s := &Shell{
		in:       bufio.NewReader(in),
		out:      out,
		auth:     svc.Auth,
		profiles: svc.Profiles,
		rentals:  svc.Rentals,
		logger:   logger,
	}
	s.secret = s.ask
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		s.secret = s.terminalSecret(int(f.Fd()))
	}
	return s
}

// Run drives the menus until the user exits or input ends.
func (s *Shell) Run(ctx context.Context) error {
	for {
		var err error
		if s.session == nil {
			err = s.welcomeMenu(ctx)
		} else {
			err = s.mainMenu(ctx)
		}
		if errors.Is(err, errExit) || errors.Is(err, io.EOF) {
			s.println("Goodbye!")
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (s *Shell) welcomeMenu(ctx context.Context) error {
	s.heading("Welcome to Rental System")
	s.println("1. Login")
	s.println("2. Sign Up")
	s.println("0. Exit")

	choice, err := s.ask("Enter your choice: ")
	if err != nil {
		return err
	}
	switch choice {
	case "1":
		return s.login(ctx)
	case "2":
		return s.signup(ctx)
	case "0":
		return errExit
	default:
		s.println("Invalid choice. Please enter 0, 1, or 2.")
		return nil
	}
}

func (s *Shell) mainMenu(ctx context.Context) error {
	s.heading("Rental System Menu")
	s.println("1. View My Profile")
	s.println("2. Update My Profile Information")
	s.println("3. View Available Properties")
	s.println("4. View My Rentals")
	s.println("5. Rent a Property")
	s.println("0. Logout")

	choice, err := s.ask("Enter your choice: ")
	if err != nil {
		return err
	}
	switch choice {
	case "1":
		return s.viewProfile(ctx)
	case "2":
		return s.updateProfile(ctx)
	case "3":
		return s.searchProperties(ctx)
	case "4":
		return s.myRentals(ctx)
	case "5":
		return s.rentProperty(ctx)
	case "0":
		s.logger.Info("logout", zap.Uint("user_id", s.session.UserID))
		s.session = nil
		s.println("Logged out successfully.")
		return nil
	default:
		s.println("Invalid choice. Please enter a number between 0 and 5.")
		return nil
	}
}

func (s *Shell) ask(label string) (string, error) {
	fmt.Fprint(s.out, label)
	text, err := s.in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || text == "") {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (s *Shell) terminalSecret(fd int) func(string) (string, error) {
	return func(label string) (string, error) {
		fmt.Fprint(s.out, label)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(s.out)
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return string(b), nil
	}
}

// confirm asks a y/n question until it gets one.
func (s *Shell) confirm(label string) (bool, error) {
	for {
		answer, err := s.ask(label)
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "y":
			return true, nil
		case "n":
			return false, nil
		}
		s.println("Invalid input. Please enter 'y' or 'n'.")
	}
}

// until repeats step while it fails validation.
func (s *Shell) until(step func() error) error {
	for {
		err := step()
		if err == nil || errs.KindOf(err) != errs.Validation {
			return err
		}
		s.problem(err)
	}
}

// fail reports a service error to the user. Input errors are returned so the
// menu loop can stop.
func (s *Shell) fail(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
		return err
	}
	if errs.KindOf(err) == errs.StoreFailure {
		s.logger.Error("operation failed", zap.Error(err))
		s.println(errorStyle.Render("Something went wrong. Please try again later."))
		return nil
	}
	s.problem(err)
	return nil
}

func (s *Shell) problem(err error) {
	s.println(errorStyle.Render(sentence(err.Error())))
}

func (s *Shell) println(a ...any) {
	fmt.Fprintln(s.out, a...)
}

func (s *Shell) printf(format string, a ...any) {
	fmt.Fprintf(s.out, format, a...)
}

func sentence(msg string) string {
	if msg == "" {
		return msg
	}
	r := []rune(msg)
	r[0] = unicode.ToUpper(r[0])
	if !strings.HasSuffix(msg, ".") {
		r = append(r, '.')
	}
	return string(r)
}
