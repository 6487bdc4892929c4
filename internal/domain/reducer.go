package domain

// Action is a cart state transition. Actions are plain values so they can be
// logged, replayed and tested without a store.
type Action interface {
	apply(Cart) Cart
	Name() string
}

// AddItem adds one unit of Item. A positive Max leaves a line that already
// holds Max units unchanged.
type AddItem struct {
	Item LineItem
	Max  int
}

type RemoveItem struct {
	ID string
}

type SetQuantity struct {
	ID       string
	Quantity int
}

type SetEmail struct {
	ID    string
	Email string
}

type ClearCart struct{}

// RemoveOrdered takes a placed order's lines out of the cart.
type RemoveOrdered struct {
	Ordered Cart
}

func (a RemoveItem) apply(c Cart) Cart    { return c.Remove(a.ID) }
func (a SetQuantity) apply(c Cart) Cart   { return c.SetQuantity(a.ID, a.Quantity) }
func (a SetEmail) apply(c Cart) Cart      { return c.SetEmail(a.ID, a.Email) }
func (ClearCart) apply(c Cart) Cart       { return c.Clear() }
func (a RemoveOrdered) apply(c Cart) Cart { return c.Subtract(a.Ordered) }

func (a AddItem) apply(c Cart) Cart {
	if a.Max > 0 {
		if existing, ok := c.Find(a.Item.ID); ok && existing.Quantity >= a.Max {
			return c
		}
	}
	return c.Add(a.Item)
}

func (AddItem) Name() string       { return "add_item" }
func (RemoveItem) Name() string    { return "remove_item" }
func (SetQuantity) Name() string   { return "set_quantity" }
func (SetEmail) Name() string      { return "set_email" }
func (ClearCart) Name() string     { return "clear_cart" }
func (RemoveOrdered) Name() string { return "remove_ordered" }

// Reduce returns the cart that results from applying action to c.
// A nil action leaves the cart unchanged.
func Reduce(c Cart, action Action) Cart {
	if action == nil {
		return c
	}
	return action.apply(c)
}
