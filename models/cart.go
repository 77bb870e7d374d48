package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// Storage keys used for a session's local state. The values match the
// browser storefront so existing persisted carts keep loading.
const (
	KeyCart          = "cart"
	KeyProductPrices = "productPrices"
	KeyAuthToken     = "auth_token"
	KeyUserResponse  = "user_response"
	KeyUserRole      = "user_role"
)

// MaxQuantity bounds the quantity of a single cart line. Writes and
// decoding share it so a saved cart always loads again.
const MaxQuantity = math.MaxInt32

// ErrMalformedEntries is returned when persisted cart data cannot be decoded.
var ErrMalformedEntries = errors.New("malformed cart entries")

type CartLine struct {
	FoodID    int64   `json:"food_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	LineTotal float64 `json:"line_total"`
}

type CartSummary struct {
	Lines         []CartLine `json:"lines"`
	TotalItems    int        `json:"total_items"`
	Subtotal      float64    `json:"subtotal"`
	Tax           float64    `json:"tax"`
	Total         float64    `json:"total"`
	MissingPrices []int64    `json:"missing_prices,omitempty"`
}

// CartItemDetail is a cart line joined with catalog data.
type CartItemDetail struct {
	CartLine
	Name        string `json:"name"`
	Description string `json:"description"`
	Thumbnail   string `json:"thumbnail"`
}

type CartDetails struct {
	Items      []CartItemDetail `json:"items"`
	TotalItems int              `json:"total_items"`
	Subtotal   float64          `json:"subtotal"`
	Tax        float64          `json:"tax"`
	Total      float64          `json:"total"`
}

// Cart maps food ids to quantities, with a parallel unit price cache.
// Lines keep first-insertion order. A Cart is not safe for concurrent use.
type Cart struct {
	order      []int64
	quantities map[int64]int
	prices     map[int64]float64
}

func NewCart() *Cart {
	return &Cart{
		quantities: make(map[int64]int),
		prices:     make(map[int64]float64),
	}
}

// Add increments the quantity of foodID, inserting it when absent, and
// overwrites its cached unit price. It leaves the cart untouched and
// returns false when quantity is not positive or the line would exceed
// MaxQuantity.
func (c *Cart) Add(foodID int64, quantity int, price float64) bool {
	existing, ok := c.quantities[foodID]
	if quantity < 1 || quantity > MaxQuantity-existing {
		return false
	}
	c.prices[foodID] = price
	c.quantities[foodID] = existing + quantity
	if !ok {
		c.order = append(c.order, foodID)
	}
	return true
}

// Remove deletes foodID and its price. It reports whether the id was present.
func (c *Cart) Remove(foodID int64) bool {
	delete(c.prices, foodID)
	if _, ok := c.quantities[foodID]; !ok {
		return false
	}
	delete(c.quantities, foodID)
	for i, id := range c.order {
		if id == foodID {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

// Increment raises the quantity of foodID by one, never above MaxQuantity.
func (c *Cart) Increment(foodID int64) bool {
	qty, ok := c.quantities[foodID]
	if !ok {
		return false
	}
	if qty < MaxQuantity {
		c.quantities[foodID] = qty + 1
	}
	return true
}

// Decrement lowers the quantity of foodID by one, never below 1.
func (c *Cart) Decrement(foodID int64) bool {
	qty, ok := c.quantities[foodID]
	if !ok {
		return false
	}
	if qty > 1 {
		c.quantities[foodID] = qty - 1
	}
	return true
}

// Take lowers foodID by quantity and drops the line once nothing is left.
func (c *Cart) Take(foodID int64, quantity int) {
	qty, ok := c.quantities[foodID]
	if !ok {
		return
	}
	if qty <= quantity {
		c.Remove(foodID)
		return
	}
	c.quantities[foodID] = qty - quantity
}

func (c *Cart) Clear() {
	c.order = nil
	c.quantities = make(map[int64]int)
	c.prices = make(map[int64]float64)
}

func (c *Cart) Quantity(foodID int64) (int, bool) {
	qty, ok := c.quantities[foodID]
	return qty, ok
}

func (c *Cart) Price(foodID int64) (float64, bool) {
	price, ok := c.prices[foodID]
	return price, ok
}

func (c *Cart) Len() int { return len(c.order) }

func (c *Cart) FoodIDs() []int64 {
	ids := make([]int64, len(c.order))
	copy(ids, c.order)
	return ids
}

func (c *Cart) Lines() []CartLine {
	lines := make([]CartLine, 0, len(c.order))
	for _, id := range c.order {
		qty := c.quantities[id]
		price := c.prices[id]
		lines = append(lines, CartLine{
			FoodID:    id,
			Quantity:  qty,
			UnitPrice: price,
			LineTotal: price * float64(qty),
		})
	}
	return lines
}

func (c *Cart) TotalItems() int {
	total := 0
	for _, qty := range c.quantities {
		total += qty
	}
	return total
}

// TotalPrice sums quantity × unit price. Lines without a cached price
// contribute zero; see MissingPrices.
func (c *Cart) TotalPrice() float64 {
	total := 0.0
	for _, id := range c.order {
		if price, ok := c.prices[id]; ok {
			total += price * float64(c.quantities[id])
		}
	}
	return total
}

// MissingPrices lists cart ids without a cached price.
func (c *Cart) MissingPrices() []int64 {
	var missing []int64
	for _, id := range c.order {
		if _, ok := c.prices[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

// Summary computes totals with tax rounded to the nearest whole unit.
func (c *Cart) Summary(taxRate float64) CartSummary {
	subtotal := c.TotalPrice()
	tax := math.Round(subtotal * taxRate)
	return CartSummary{
		Lines:         c.Lines(),
		TotalItems:    c.TotalItems(),
		Subtotal:      subtotal,
		Tax:           tax,
		Total:         subtotal + tax,
		MissingPrices: c.MissingPrices(),
	}
}

// Encode serialises the cart as the two persisted pair arrays:
// [[foodId, quantity], ...] and [[foodId, price], ...].
func (c *Cart) Encode() (cartJSON, pricesJSON []byte, err error) {
	entries := make([][2]int64, 0, len(c.order))
	prices := make([][2]float64, 0, len(c.order))
	for _, id := range c.order {
		entries = append(entries, [2]int64{id, int64(c.quantities[id])})
		if price, ok := c.prices[id]; ok {
			prices = append(prices, [2]float64{float64(id), price})
		}
	}

	if cartJSON, err = json.Marshal(entries); err != nil {
		return nil, nil, err
	}
	if pricesJSON, err = json.Marshal(prices); err != nil {
		return nil, nil, err
	}
	return cartJSON, pricesJSON, nil
}

// DecodeCart rebuilds a cart from its persisted pair arrays. Empty input
// means an empty mapping. Price entries for ids not in the cart are dropped.
func DecodeCart(cartJSON, pricesJSON []byte) (*Cart, error) {
	c := NewCart()

	var entries [][2]int64
	if len(cartJSON) > 0 {
		if err := json.Unmarshal(cartJSON, &entries); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformedEntries, KeyCart, err)
		}
	}
	for _, e := range entries {
		id, qty := e[0], e[1]
		if qty < 1 || qty > MaxQuantity {
			return nil, fmt.Errorf("%w: %s: food %d has quantity %d", ErrMalformedEntries, KeyCart, id, qty)
		}
		if _, ok := c.quantities[id]; !ok {
			c.order = append(c.order, id)
		}
		c.quantities[id] = int(qty)
	}

	var prices [][2]float64
	if len(pricesJSON) > 0 {
		if err := json.Unmarshal(pricesJSON, &prices); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformedEntries, KeyProductPrices, err)
		}
	}
	for _, p := range prices {
		if p[0] != math.Trunc(p[0]) {
			return nil, fmt.Errorf("%w: %s: non-integer food id %v", ErrMalformedEntries, KeyProductPrices, p[0])
		}
		id := int64(p[0])
		if _, ok := c.quantities[id]; ok {
			c.prices[id] = p[1]
		}
	}

	return c, nil
}

// AddItemRequest is the body of POST /cart/add.
type AddItemRequest struct {
	FoodID   int64   `json:"food_id"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}
