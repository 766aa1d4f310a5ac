package services

import (
	"sort"
	"time"

	"github.com/sjperalta/smartdebt-api/internal/models"
)

// TransactionView is a transaction joined with its debtor for display
type TransactionView struct {
	models.Transaction
	DebtorName string            `json:"debtorName"`
	DebtorType models.DebtorType `json:"debtorType,omitempty"`
	TypeLabel  string            `json:"typeLabel"`
	DateLabel  string            `json:"dateLabel"`
}

// DailyActivity sums the amounts recorded on one calendar day
type DailyActivity struct {
	Date     string `json:"date"`
	Label    string `json:"label"`
	Increase int64  `json:"increase"`
	Decrease int64  `json:"decrease"`
}

// StructureSlice is one part of the receivable/payable split
type StructureSlice struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

// DashboardSummary is everything the overview screen shows
type DashboardSummary struct {
	TotalReceivable int64             `json:"totalReceivable"`
	TotalPayable    int64             `json:"totalPayable"`
	NetBalance      int64             `json:"netBalance"`
	Formatted       map[string]string `json:"formatted"`
	CustomerCount   int               `json:"customerCount"`
	SupplierCount   int               `json:"supplierCount"`
	Activity        []DailyActivity   `json:"activity"`
	Recent          []TransactionView `json:"recentTransactions"`
	Structure       []StructureSlice  `json:"structure"`
}

// DebtorDetail is a debtor with its history, newest first
type DebtorDetail struct {
	Debtor       models.Debtor     `json:"debtor"`
	TypeLabel    string            `json:"typeLabel"`
	BalanceLabel string            `json:"balanceLabel"`
	Transactions []TransactionView `json:"transactions"`
}

const (
	recentTransactionCount = 5
	activityDays           = 7
)

var weekdayLabels = [7]string{"CN", "T2", "T3", "T4", "T5", "T6", "T7"}

// DashboardService answers read-only queries over the current snapshot
type DashboardService struct {
	ledger *LedgerService
	format *Formatter
	now    func() time.Time
}

// NewDashboardService creates the query service
func NewDashboardService(ledgerSvc *LedgerService, format *Formatter) *DashboardService {
	return &DashboardService{ledger: ledgerSvc, format: format, now: time.Now}
}

// Dashboard computes the overview from the current snapshot
func (s *DashboardService) Dashboard() DashboardSummary {
	return BuildDashboard(s.ledger.Snapshot(), s.now(), s.format)
}

// ListDebtors filters by search text and optional type, keeping insertion order
func (s *DashboardService) ListDebtors(query string, typ models.DebtorType) []models.Debtor {
	return FilterDebtors(s.ledger.Snapshot().Debtors, query, typ)
}

// DebtorDetail returns a debtor and its transactions
func (s *DashboardService) DebtorDetail(id string) (*DebtorDetail, error) {
	state := s.ledger.Snapshot()
	d, ok := state.FindDebtor(id)
	if !ok {
		return nil, ErrNotFound
	}
	return &DebtorDetail{
		Debtor:       d,
		TypeLabel:    d.Type.LongLabel(),
		BalanceLabel: s.format.Currency(d.TotalBalance),
		Transactions: HistoryViews(state, id, 0, s.format),
	}, nil
}

// History lists transactions newest first, optionally for one debtor and capped at limit (0 = all)
func (s *DashboardService) History(debtorID string, limit int) []TransactionView {
	return HistoryViews(s.ledger.Snapshot(), debtorID, limit, s.format)
}

// BuildDashboard aggregates totals by debtor type, the last seven days of activity
// and the most recent entries
func BuildDashboard(state models.AppState, now time.Time, f *Formatter) DashboardSummary {
	var sum DashboardSummary
	for _, d := range state.Debtors {
		switch d.Type {
		case models.DebtorTypeCustomer:
			sum.TotalReceivable += d.TotalBalance
			sum.CustomerCount++
		case models.DebtorTypeSupplier:
			sum.TotalPayable += d.TotalBalance
			sum.SupplierCount++
		}
	}
	sum.NetBalance = sum.TotalReceivable - sum.TotalPayable
	sum.Formatted = map[string]string{
		"totalReceivable": f.Currency(sum.TotalReceivable),
		"totalPayable":    f.Currency(sum.TotalPayable),
		"netBalance":      f.Currency(sum.NetBalance),
	}
	sum.Structure = []StructureSlice{
		{Name: "Phải thu", Value: sum.TotalReceivable},
		{Name: "Phải trả", Value: sum.TotalPayable},
	}

	today := now.In(f.Location())
	byDay := make(map[string]int, activityDays)
	sum.Activity = make([]DailyActivity, activityDays)
	for i := 0; i < activityDays; i++ {
		day := today.AddDate(0, 0, i-(activityDays-1))
		key := day.Format("2006-01-02")
		sum.Activity[i] = DailyActivity{Date: key, Label: weekdayLabels[day.Weekday()]}
		byDay[key] = i
	}
	for _, t := range state.Transactions {
		i, ok := byDay[f.DayKey(t.Date)]
		if !ok {
			continue
		}
		if t.Type == models.TransactionTypeDecrease {
			sum.Activity[i].Decrease += t.Amount
		} else {
			sum.Activity[i].Increase += t.Amount
		}
	}

	sum.Recent = HistoryViews(state, "", recentTransactionCount, f)
	return sum
}

// FilterDebtors applies the list search and type filter
func FilterDebtors(debtors []models.Debtor, query string, typ models.DebtorType) []models.Debtor {
	out := make([]models.Debtor, 0, len(debtors))
	for _, d := range debtors {
		if typ != "" && d.Type != typ {
			continue
		}
		if MatchesSearch(d, query) {
			out = append(out, d)
		}
	}
	return out
}

// HistoryViews sorts by transaction date, newest first; entries on the same instant keep ledger order
func HistoryViews(state models.AppState, debtorID string, limit int, f *Formatter) []TransactionView {
	names := make(map[string]models.Debtor, len(state.Debtors))
	for _, d := range state.Debtors {
		names[d.ID] = d
	}

	views := make([]TransactionView, 0, len(state.Transactions))
	for _, t := range state.Transactions {
		if debtorID != "" && t.DebtorID != debtorID {
			continue
		}
		d := names[t.DebtorID]
		views = append(views, TransactionView{
			Transaction: t,
			DebtorName:  d.Name,
			DebtorType:  d.Type,
			TypeLabel:   t.Type.Label(),
			DateLabel:   f.LedgerDate(t.Date),
		})
	}
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].Date.Time.After(views[j].Date.Time)
	})
	if limit > 0 && len(views) > limit {
		views = views[:limit]
	}
	return views
}
