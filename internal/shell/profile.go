package shell

import (
	"context"

	"rentctl/internal/profile"
)

const (
	choiceName          = "1"
	choicePhone         = "2"
	choiceEmail         = "3"
	choiceSSN           = "4"
	choicePassport      = "5"
	choiceTranscript    = "6"
	choiceCitizenship   = "7"
	choiceStudent       = "8"
	choiceCancel        = "0"
	transcriptUploadTip = "(In a real application, you would upload a file.)"
)

func (s *Shell) viewProfile(ctx context.Context) error {
	view, err := s.profiles.GetProfile(ctx, s.session.UserID)
	if err != nil {
		return s.fail(err)
	}
	s.println(renderProfile(view))
	return nil
}

func (s *Shell) updateProfile(ctx context.Context) error {
	userID := s.session.UserID
	view, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return s.fail(err)
	}
	roles := view.Roles

	s.heading("Update Personal Information")
	s.field("Current Name", view.FirstName+" "+view.LastName)
	s.field("Current Phone", view.Phone)
	s.field("Current Email", view.Email)

	s.println("\nWhich field would you like to update?")
	s.println("1. Name")
	s.println("2. Phone")
	s.println("3. Email")
	if roles.Has(profile.RoleUSCitizen) {
		s.println("4. SSN (US Citizen)")
	}
	if roles.Has(profile.RoleInternationalStudent) {
		s.println("5. Passport ID (International Student)")
	}
	if roles.Has(profile.RoleStudent) {
		s.println("6. Transcript (Student)")
	}
	if !roles.Classified() {
		s.println("7. Register as US Citizen or International Student")
	}
	if !roles.Has(profile.RoleStudent) {
		s.println("8. Register as Student")
	}

	var choice string
	for {
		if choice, err = s.ask("Enter your choice (or 0 to cancel): "); err != nil {
			return err
		}
		if msg := unavailable(choice, roles); msg != "" {
			s.println(msg)
			continue
		}
		break
	}

	switch choice {
	case choiceCancel:
		return nil
	case choiceName:
		err = s.until(func() error {
			first, err := s.ask("First Name [" + view.FirstName + "]: ")
			if err != nil {
				return err
			}
			last, err := s.ask("Last Name [" + view.LastName + "]: ")
			if err != nil {
				return err
			}
			return s.profiles.UpdateField(ctx, userID, profile.NameChange(first, last))
		})
	case choicePhone:
		err = s.edit(ctx, profile.FieldPhone, view.Phone)
	case choiceEmail:
		err = s.edit(ctx, profile.FieldEmail, view.Email)
	case choiceSSN:
		err = s.edit(ctx, profile.FieldSSN, view.SSN)
	case choicePassport:
		err = s.edit(ctx, profile.FieldPassportID, view.PassportID)
	case choiceTranscript:
		if err = s.profiles.UpdateField(ctx, userID, profile.Set(profile.FieldTranscript, "")); err == nil {
			s.println("Transcript updated. " + transcriptUploadTip)
		}
	case choiceCitizenship:
		return s.registerCitizenship(ctx)
	case choiceStudent:
		if err = s.profiles.AttachStudent(ctx, userID); err != nil {
			return s.fail(err)
		}
		s.println("Registered as Student successfully.")
		s.println("Transcript placeholder added. " + transcriptUploadTip)
		return nil
	}
	if err != nil {
		return s.fail(err)
	}
	s.println("Information updated successfully!")
	return nil
}

// edit prompts for one field showing its current value. Blank input is passed
// through so the service can apply its keep-current rules.
func (s *Shell) edit(ctx context.Context, field profile.Field, current string) error {
	return s.until(func() error {
		value, err := s.ask(field.String() + " [" + current + "]: ")
		if err != nil {
			return err
		}
		return s.profiles.UpdateField(ctx, s.session.UserID, profile.Set(field, value))
	})
}

func (s *Shell) registerCitizenship(ctx context.Context) error {
	s.println("\nRegister as:")
	s.println("1. US Citizen")
	s.println("2. International Student")

	for {
		choice, err := s.ask("Enter your choice (or 0 to cancel): ")
		if err != nil {
			return err
		}
		switch choice {
		case "0":
			return nil
		case "1":
			err = s.until(func() error {
				ssn, err := s.ask("Enter your SSN (XXX-XX-XXXX or XXXXXXXXX): ")
				if err != nil {
					return err
				}
				return s.profiles.AttachRole(ctx, s.session.UserID, profile.USCitizenWith(ssn))
			})
			if err != nil {
				return s.fail(err)
			}
			s.println("Registered as US Citizen successfully.")
			return nil
		case "2":
			err = s.until(func() error {
				passport, err := s.ask("Enter your Passport ID: ")
				if err != nil {
					return err
				}
				return s.profiles.AttachRole(ctx, s.session.UserID, profile.InternationalStudentWith(passport))
			})
			if err != nil {
				return s.fail(err)
			}
			s.println("Registered as International Student successfully.")
			return nil
		default:
			s.println("Invalid choice. Please enter 0, 1, or 2.")
		}
	}
}

// unavailable explains why choice cannot be taken with roles, or returns "".
func unavailable(choice string, roles profile.RoleSet) string {
	switch choice {
	case choiceCancel, choiceName, choicePhone, choiceEmail:
		return ""
	case choiceSSN:
		if !roles.Has(profile.RoleUSCitizen) {
			return sentence(profile.ErrNotUSCitizen.Error())
		}
	case choicePassport:
		if !roles.Has(profile.RoleInternationalStudent) {
			return sentence(profile.ErrNotInternationalStudent.Error())
		}
	case choiceTranscript:
		if !roles.Has(profile.RoleStudent) {
			return sentence(profile.ErrNotStudent.Error())
		}
	case choiceCitizenship:
		if roles.Classified() {
			return sentence(profile.ErrAlreadyClassified.Error())
		}
	case choiceStudent:
		if roles.Has(profile.RoleStudent) {
			return "You are already registered as a Student."
		}
	default:
		return "Invalid choice. Please enter a valid number."
	}
	return ""
}
