package domain

import (
	"encoding/json"
	"math"
	"strconv"
)

// Unavailable is emitted in place of a mean when nothing contributed to it.
const Unavailable = "N/A"

// Mean is a one-decimal average or the Unavailable marker. A zero Mean
// with Valid=true is a real 0.0 average, not absence.
type Mean struct {
	Value float64
	Valid bool
}

// NewMean returns sum/n rounded to one decimal; n<=0 yields an invalid Mean.
func NewMean(sum float64, n int) Mean {
	if n <= 0 {
		return Mean{}
	}
	return Mean{Value: math.Round(sum/float64(n)*10) / 10, Valid: true}
}

func (m Mean) String() string {
	if !m.Valid {
		return Unavailable
	}
	return strconv.FormatFloat(m.Value, 'f', 1, 64)
}

func (m Mean) MarshalJSON() ([]byte, error) { return json.Marshal(m.String()) }

func (m *Mean) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == Unavailable {
		*m = Mean{}
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*m = Mean{Value: v, Valid: true}
	return nil
}

// AggregateStat is derived from the reviews of one entity on every read.
// It is never persisted or cached.
type AggregateStat struct {
	EntityKey    string
	Count        int
	Means        map[string]Mean
	Distribution map[int]int // buckets 1..5, always present
	Clamped      int         // overall ratings that rounded outside 1..5
}

// RatingGroup is the output of the store's grouped sum reducer for one key:
// the count of reviews with overall > 0 and per-dimension sums over them.
type RatingGroup struct {
	EntityKey string
	Count     int
	Sums      map[string]float64
}
