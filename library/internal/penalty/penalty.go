// Package penalty derives overdue state and penalties from ledger dates.
// Nothing here is persisted; results depend only on the issue and now.
package penalty

import (
	"time"

	"github.com/Astemirdum/smart-library/library/internal/model"
)

const day = 24 * time.Hour

type Config struct {
	LoanPeriod  time.Duration `yaml:"loanPeriod" envconfig:"LOAN_PERIOD" default:"168h"`
	UnitPenalty int           `yaml:"unitPenalty" envconfig:"LOAN_UNIT_PENALTY" default:"5"`
	DueSoonDays int           `yaml:"dueSoonDays" envconfig:"LOAN_DUE_SOON_DAYS" default:"3"`
}

type Calculator struct {
	loanPeriod  time.Duration
	unitPenalty int
	dueSoonDays int
}

func NewCalculator(cfg Config) *Calculator {
	return &Calculator{
		loanPeriod:  cfg.LoanPeriod,
		unitPenalty: cfg.UnitPenalty,
		dueSoonDays: cfg.DueSoonDays,
	}
}

func (c *Calculator) DueDate(issueDate time.Time) time.Time {
	return issueDate.Add(c.loanPeriod)
}

// DaysOverdue is the number of whole days past dueDate, never negative.
func DaysOverdue(dueDate, now time.Time) int {
	if !now.After(dueDate) {
		return 0
	}
	return int(now.Sub(dueDate) / day)
}

// DaysUntilDue truncates toward zero, so an issue in its first day past due reports 0.
func DaysUntilDue(dueDate, now time.Time) int {
	return int(dueDate.Sub(now) / day)
}

func IsOverdue(issue model.Issue, now time.Time) bool {
	return issue.Status != model.StatusReturned && DaysOverdue(issue.DueDate, now) > 0
}

// Amount is the penalty accrued by now. A returned issue stops accruing at its return date.
func (c *Calculator) Amount(issue model.Issue, now time.Time) int {
	if issue.Status == model.StatusReturned {
		if issue.ReturnDate == nil {
			return issue.PenaltyAmount
		}
		now = *issue.ReturnDate
	}
	return DaysOverdue(issue.DueDate, now) * c.unitPenalty
}

// IsDueSoon: open, not overdue and due within the due-soon window.
func (c *Calculator) IsDueSoon(issue model.Issue, now time.Time) bool {
	if !issue.Status.Open() || IsOverdue(issue, now) {
		return false
	}
	d := DaysUntilDue(issue.DueDate, now)
	return d >= 0 && d <= c.dueSoonDays
}

// Annotate fills the read-time fields of an issue view.
func (c *Calculator) Annotate(v *model.IssueView, now time.Time) {
	v.DaysOverdue = 0
	v.IsOverdue = IsOverdue(v.Issue, now)
	if v.Status.Open() {
		v.DaysOverdue = DaysOverdue(v.DueDate, now)
		v.DaysUntilDue = DaysUntilDue(v.DueDate, now)
		v.PenaltyAmount = c.Amount(v.Issue, now)
	}
	if v.IsOverdue {
		v.Status = model.StatusOverdue
	}
}
