// Package analytics calcula as visões do dashboard a partir das coleções de
// entidades.
//
// Todas as funções são puras: mesmas slices (e mesmo now) geram o mesmo
// resultado. Valores ausentes contam como zero e nunca interrompem o cálculo.
package analytics

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

// TopN é o tamanho de todos os rankings.
const TopN = 5

const unknownLabel = "Unknown"

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// percent devolve part/total*100 com 1 casa; 0 quando total é 0.
func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return round1(float64(part) / float64(total) * 100)
}

func labelOrUnknown(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return unknownLabel
	}
	return s
}

func monthKey(t time.Time) string {
	return t.Format("2006-01")
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// saleDate usa created_at quando a venda não tem data.
func saleDate(s *entity.Sale) (time.Time, bool) {
	if !s.Date.IsZero() {
		return s.Date, true
	}
	if !s.CreatedAt.IsZero() {
		return s.CreatedAt, true
	}
	return time.Time{}, false
}

// RankedItem é uma linha de ranking top-N.
type RankedItem struct {
	Name    string        `json:"name"`
	Revenue entity.Amount `json:"revenue"`
	Orders  int           `json:"orders"`
}

// ranker soma receita por chave mantendo a ordem de chegada (desempate estável).
type ranker struct {
	order []string
	items map[string]*RankedItem
}

func newRanker() *ranker {
	return &ranker{items: make(map[string]*RankedItem)}
}

func (r *ranker) add(key, name string, amount entity.Amount) {
	item, ok := r.items[key]
	if !ok {
		item = &RankedItem{Name: name}
		r.items[key] = item
		r.order = append(r.order, key)
	}
	if item.Name == "" {
		item.Name = name
	}
	item.Revenue += amount
	item.Orders++
}

func (r *ranker) top(n int) []RankedItem {
	out := make([]RankedItem, 0, len(r.order))
	for _, k := range r.order {
		out = append(out, *r.items[k])
	}
	sortStable(out, func(a, b RankedItem) bool { return a.Revenue > b.Revenue })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func sortStable[T any](s []T, less func(a, b T) bool) {
	sort.SliceStable(s, func(i, j int) bool { return less(s[i], s[j]) })
}
