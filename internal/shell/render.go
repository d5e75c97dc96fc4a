package shell

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"rentctl/internal/models"
	"rentctl/internal/profile"
	"rentctl/internal/rental"
)

const dateLayout = "2006-01-02"

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle   = lipgloss.NewStyle().Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	borderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
)

func (s *Shell) heading(title string) {
	s.println()
	s.println(headingStyle.Render("===== " + strings.ToUpper(title) + " ====="))
}

func (s *Shell) field(label, value string) {
	s.println(line(label, value))
}

func line(label, value string) string {
	return labelStyle.Render(label+":") + " " + value
}

func money(v float64) string {
	return "$" + strconv.FormatFloat(v, 'f', 2, 64)
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}

// PropertyTable renders properties one per row.
func PropertyTable(properties []models.Property) string {
	t := newTable("ID", "Address", "Sq Ft", "Price", "Rooms", "Landlord", "Neighborhood")
	for _, p := range properties {
		landlord := ""
		if p.Landlord != nil && p.Landlord.User != nil {
			landlord = p.Landlord.User.FullName()
		}
		names := make([]string, 0, len(p.Neighborhoods))
		for _, n := range p.Neighborhoods {
			names = append(names, n.Name)
		}
		t.Row(
			strconv.FormatUint(uint64(p.ID), 10),
			p.Address(),
			strconv.FormatFloat(p.SquareFoot, 'f', -1, 64),
			money(p.Price),
			strconv.Itoa(p.RoomAmount),
			landlord,
			strings.Join(names, ", "),
		)
	}
	return t.String()
}

// LeaseTable renders leases one per row. Current leases also show broker and
// landlord contact.
func LeaseTable(leases []models.Lease, current bool) string {
	headers := []string{"Rental ID", "Property", "Period", "Monthly Rent"}
	if current {
		headers = append(headers, "Broker", "Landlord", "Contact")
	}
	t := newTable(headers...)
	for _, l := range leases {
		address := ""
		if l.Property != nil {
			address = l.Property.Address()
		}
		row := []string{
			strconv.FormatUint(uint64(l.ID), 10),
			address,
			l.StartDate.Format(dateLayout) + " to " + l.EndDate.Format(dateLayout),
			money(l.Price),
		}
		if current {
			broker := "-"
			if l.Broker != nil {
				broker = l.Broker.FullName()
				if l.BrokerFee != nil {
					broker += " (" + money(*l.BrokerFee) + ")"
				}
			}
			landlord, contact := "", ""
			if l.Property != nil && l.Property.Landlord != nil && l.Property.Landlord.User != nil {
				u := l.Property.Landlord.User
				landlord = u.FullName()
				contact = u.Phone + " / " + u.Email
			}
			row = append(row, broker, landlord, contact)
		}
		t.Row(row...)
	}
	return t.String()
}

func renderProfile(v *profile.View) string {
	var b strings.Builder
	b.WriteString(headingStyle.Render("===== USER PROFILE =====") + "\n")
	lines := []string{
		line("Name", v.FirstName+" "+v.LastName),
		line("Username", v.Username),
		line("Email", v.Email),
		line("Phone", v.Phone),
		line("Last Login", stamp(v.LastLogin)),
	}
	if v.Roles.Has(profile.RoleLandlord) {
		lines = append(lines, line("Registered as", profile.RoleLandlord.String()))
	}
	if v.Roles.Has(profile.RoleTenant) {
		lines = append(lines, line("Registered as", profile.RoleTenant.String()))
	}
	if v.Roles.Has(profile.RoleUSCitizen) {
		lines = append(lines, line("Status", profile.RoleUSCitizen.String()), line("SSN", v.SSN))
	}
	if v.Roles.Has(profile.RoleInternationalStudent) {
		lines = append(lines, line("Status", profile.RoleInternationalStudent.String()), line("Passport ID", v.PassportID))
	}
	if v.Roles.Has(profile.RoleStudent) {
		lines = append(lines, line("Status", profile.RoleStudent.String()), line("Transcript", v.Transcript))
	}
	b.WriteString(strings.Join(lines, "\n"))
	return b.String()
}

func renderSummary(d *rental.Draft) string {
	lines := []string{
		"",
		labelStyle.Render("Rental Summary:"),
		line("Property", d.Property.Address()),
		line("Monthly Rent", money(d.Property.Price)),
		line("Contract Length", fmt.Sprintf("%d months", d.Months)),
		line("Start Date", d.StartDate.Format(dateLayout)),
		line("End Date", d.EndDate.Format(dateLayout)),
	}
	if d.Broker != nil {
		lines = append(lines, line("Broker", d.Broker.FullName()))
		if d.BrokerFee != nil {
			lines = append(lines, line("Broker Fee", money(*d.BrokerFee)))
		}
	}
	return strings.Join(lines, "\n")
}

func stamp(t *time.Time) string {
	if t == nil {
		return "never"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
