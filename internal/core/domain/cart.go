package domain

// LineItem is one product entry in the cart. UnitPrice is in the smallest
// currency unit.
type LineItem struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Picture   string `json:"picture"`
	UnitPrice int64  `json:"price"`
	Quantity  int    `json:"quantity"`
}

// ItemCandidate is what a caller hands to the cart; the cart assigns the ID.
type ItemCandidate struct {
	Name      string `json:"name"`
	Picture   string `json:"picture"`
	UnitPrice int64  `json:"price"`
	Quantity  int    `json:"quantity"`
}

func CartTotal(items []LineItem) int64 {
	var total int64
	for _, item := range items {
		total += item.UnitPrice * int64(item.Quantity)
	}
	return total
}

func CartCount(items []LineItem) int {
	count := 0
	for _, item := range items {
		count += item.Quantity
	}
	return count
}
