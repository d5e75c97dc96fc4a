package shell

import (
	"context"

	"rentctl/internal/auth"
	"rentctl/internal/validate"
)

func (s *Shell) login(ctx context.Context) error {
	s.heading("Login")
	email, err := s.ask("Enter your email: ")
	if err != nil {
		return err
	}
	password, err := s.secret("Enter your password: ")
	if err != nil {
		return err
	}

	session, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return s.fail(err)
	}
	s.session = session
	s.println("Login successful!")
	return nil
}

func (s *Shell) signup(ctx context.Context) error {
	s.heading("Signup")

	var in auth.Signup
	err := s.until(func() error {
		var err error
		if in.Email, err = s.ask("Enter your email: "); err != nil {
			return err
		}
		return validate.Email(in.Email)
	})
	if err != nil {
		return err
	}
	taken, err := s.auth.EmailTaken(ctx, in.Email)
	if err != nil {
		return s.fail(err)
	}
	if taken {
		s.println("An account with this email already exists. Please log in instead or use a different email.")
		return nil
	}

	for {
		if in.Password, err = s.secret("Enter your password: "); err != nil {
			return err
		}
		if in.ConfirmPassword, err = s.secret("Confirm your password: "); err != nil {
			return err
		}
		if in.Password == "" {
			s.problem(auth.ErrEmptyPassword)
			continue
		}
		if in.Password != in.ConfirmPassword {
			s.problem(auth.ErrPasswordMismatch)
			continue
		}
		break
	}

	err = s.until(func() error {
		var err error
		if in.FirstName, err = s.ask("Enter your first name: "); err != nil {
			return err
		}
		return validate.FirstName(in.FirstName)
	})
	if err != nil {
		return err
	}
	err = s.until(func() error {
		var err error
		if in.LastName, err = s.ask("Enter your last name: "); err != nil {
			return err
		}
		return validate.LastName(in.LastName)
	})
	if err != nil {
		return err
	}
	err = s.until(func() error {
		var err error
		if in.Phone, err = s.ask("Enter your phone number: "); err != nil {
			return err
		}
		return validate.Phone(in.Phone)
	})
	if err != nil {
		return err
	}

	if _, err := s.auth.Register(ctx, in); err != nil {
		return s.fail(err)
	}
	s.println("Signup successful! You can now log in.")
	return nil
}
