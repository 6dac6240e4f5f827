package core

// Aggregate is the total of a user's expenses in one category.
type Aggregate struct {
	Category string
	Total    Money
}

// Sum returns the grand total of aggs.
func Sum(aggs []Aggregate) Money {
	var total Money
	for _, a := range aggs {
		total = total.Add(a.Total)
	}
	return total
}
