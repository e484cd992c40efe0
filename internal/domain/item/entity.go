package item

import (
	"fmt"
	"time"
)

type Item struct {
	ID          int64
	Title       string
	SubTitle    string
	Brand       string
	Category    string
	PriceCents  int64
	Images      []string
	Description string
	Saleable    bool
	UpdatedAt   time.Time
}

func (i Item) Price() string {
	return fmt.Sprintf("%d.%02d", i.PriceCents/100, i.PriceCents%100)
}
