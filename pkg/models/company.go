package models

import "time"

// Company is the canonical record a credit assessment is made from.
// Name is the identity key; re-ingesting a name overwrites every other field.
type Company struct {
	ID              int64     `db:"id"                json:"id"`
	Name            string    `db:"name"              json:"name"`
	AnnualRevenue   int64     `db:"annual_revenue"    json:"annual_revenue"`
	TotalDebt       int64     `db:"total_debt"        json:"total_debt"`
	PaymentTermDays int       `db:"payment_term_days" json:"payment_term_days"`
	Sector          string    `db:"sector"            json:"sector"`
	Rating          string    `db:"rating"            json:"rating"`
	RecentNews      string    `db:"recent_news"       json:"recent_news"`
	CreatedAt       time.Time `db:"created_at"        json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"        json:"updated_at"`

	// Missing marks figures the caller did not supply. Stored records are
	// always complete.
	Missing Figures `db:"-" json:"-"`
}

// Figures is a set of the numeric company fields.
type Figures uint8

const (
	FigureAnnualRevenue Figures = 1 << iota
	FigureTotalDebt
	FigurePaymentTerm
)

// Has reports whether every figure in x is in f.
func (f Figures) Has(x Figures) bool { return f&x == x }

const (
	RatingBandGreen  = "green"
	RatingBandYellow = "yellow"
	RatingBandRed    = "red"
)

var ratingBands = map[string]string{
	"A+": RatingBandGreen, "A": RatingBandGreen, "A-": RatingBandGreen, "B+": RatingBandGreen, "B": RatingBandGreen,
	"B-": RatingBandYellow, "C": RatingBandYellow, "C+": RatingBandYellow,
	"C-": RatingBandRed, "D+": RatingBandRed, "D": RatingBandRed, "D-": RatingBandRed,
}

// RatingBand maps a credit grade to its display band. Unknown grades map to "".
func RatingBand(rating string) string {
	return ratingBands[rating]
}
