package pipeline

import (
	"log/slog"

	"hretl/internal/transformer"
	"hretl/internal/transformer/builtin"
)

// Rejection reasons written to the rejected destination.
const (
	ReasonEmptyName    = "Empty Name"
	ReasonInvalidEmail = "Invalid or Duplicated Email"
	ReasonSalary       = "Invalid Salary or less than 0 value"
	ReasonDate         = "Invalid Date format"
)

// Stage is one named rule. Rows that enter Transformer but do not come out
// are attributed Reason, unless an earlier stage already rejected them.
type Stage struct {
	Name        string
	Reason      string
	Transformer transformer.Transformer
}

// Fields names the columns the default stages read.
type Fields struct {
	ID       string
	Name     string
	Email    string
	Salary   string
	JoinDate string
}

// DefaultFields returns the staging table's column names.
func DefaultFields() Fields {
	return Fields{
		ID:       "id",
		Name:     "name",
		Email:    "email",
		Salary:   "salary",
		JoinDate: "join_date",
	}
}

// WithDefaults returns f with empty names filled from DefaultFields.
func (f Fields) WithDefaults() Fields {
	d := DefaultFields()
	if f.ID == "" {
		f.ID = d.ID
	}
	if f.Name == "" {
		f.Name = d.Name
	}
	if f.Email == "" {
		f.Email = d.Email
	}
	if f.Salary == "" {
		f.Salary = d.Salary
	}
	if f.JoinDate == "" {
		f.JoinDate = d.JoinDate
	}
	return f
}

// DefaultStages returns the four employee rules in their fixed order:
// name, email, salary, date. log receives a warning whenever a salary loses
// its minus sign; it may be nil.
func DefaultStages(f Fields, log *slog.Logger) []Stage {
	f = f.WithDefaults()
	salary := builtin.Salary{Field: f.Salary}
	if log != nil {
		salary.OnSignDropped = func(raw string) {
			log.Warn("pipeline: negative salary kept as positive", "field", f.Salary, "raw", raw)
		}
	}
	return []Stage{
		{
			Name:        "name",
			Reason:      ReasonEmptyName,
			Transformer: builtin.Require{Fields: []string{f.Name}},
		},
		{
			Name:   "email",
			Reason: ReasonInvalidEmail,
			Transformer: transformer.Chain{
				builtin.Email{Field: f.Email},
				builtin.DeDup{Keys: []string{f.Email}, Policy: "keep-first"},
			},
		},
		{
			Name:        "salary",
			Reason:      ReasonSalary,
			Transformer: salary,
		},
		{
			Name:        "date",
			Reason:      ReasonDate,
			Transformer: builtin.JoinDate{Field: f.JoinDate},
		},
	}
}
