package recipe

// Value Objects - immutable reference data shared by every request

// IngredientSpec describes one entry of the ingredient catalog
type IngredientSpec struct {
	Key            string  `json:"key"`
	Name           string  `json:"name"`
	Unit           string  `json:"unit"`
	PerClickAmount float64 `json:"per_click_amount"`
}

// Catalog is the fixed, ordered ingredient reference list.
// It is built once at startup and only read afterwards.
type Catalog struct {
	specs []IngredientSpec
	index map[string]int
}

// NewCatalog builds a catalog from specs, keeping their order.
// Duplicate keys are rejected.
func NewCatalog(specs []IngredientSpec) (*Catalog, error) {
	c := &Catalog{
		specs: make([]IngredientSpec, len(specs)),
		index: make(map[string]int, len(specs)),
	}
	copy(c.specs, specs)

	for i, spec := range c.specs {
		if spec.Key == "" {
			return nil, ErrEmptyIngredientKey
		}
		if _, exists := c.index[spec.Key]; exists {
			return nil, ErrDuplicateIngredient
		}
		c.index[spec.Key] = i
	}

	return c, nil
}

// DefaultCatalog returns the pasta pantry served by the application
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(defaultSpecs)
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup returns the ingredient registered under key
func (c *Catalog) Lookup(key string) (IngredientSpec, bool) {
	i, ok := c.index[key]
	if !ok {
		return IngredientSpec{}, false
	}
	return c.specs[i], true
}

// Keys returns the ingredient keys in catalog order
func (c *Catalog) Keys() []string {
	keys := make([]string, len(c.specs))
	for i, spec := range c.specs {
		keys[i] = spec.Key
	}
	return keys
}

// Specs returns a copy of the catalog entries in order
func (c *Catalog) Specs() []IngredientSpec {
	out := make([]IngredientSpec, len(c.specs))
	copy(out, c.specs)
	return out
}

// Len returns the number of catalog entries
func (c *Catalog) Len() int {
	return len(c.specs)
}

// position returns the catalog order of key, or -1 when unknown
func (c *Catalog) position(key string) int {
	if i, ok := c.index[key]; ok {
		return i
	}
	return -1
}

var defaultSpecs = []IngredientSpec{
	{Key: "garlic", Name: "garlic", Unit: "piece", PerClickAmount: 1},
	{Key: "onion", Name: "onion", Unit: "piece", PerClickAmount: 0.5},
	{Key: "mushroom", Name: "mushroom", Unit: "piece", PerClickAmount: 1},
	{Key: "spinach", Name: "spinach", Unit: "g", PerClickAmount: 10},
	{Key: "olive", Name: "olive", Unit: "piece", PerClickAmount: 1},
	{Key: "pepper", Name: "pepper", Unit: "piece", PerClickAmount: 1},
	{Key: "black_pepper", Name: "black_pepper", Unit: "g", PerClickAmount: 2},
	{Key: "salt", Name: "salt", Unit: "g", PerClickAmount: 2},
	{Key: "basil", Name: "basil", Unit: "leaf", PerClickAmount: 1},
	{Key: "butter", Name: "butter", Unit: "g", PerClickAmount: 10},
	{Key: "cheese", Name: "cheese", Unit: "g", PerClickAmount: 10},
	{Key: "tomato", Name: "tomato", Unit: "piece", PerClickAmount: 0.5},
	{Key: "anchovy", Name: "anchovy", Unit: "piece", PerClickAmount: 1},
	{Key: "baccon", Name: "baccon", Unit: "g", PerClickAmount: 10},
	{Key: "shrimp", Name: "shrimp", Unit: "piece", PerClickAmount: 1},
	{Key: "chicken_stock", Name: "chicken_stock", Unit: "g", PerClickAmount: 2},
	{Key: "spaghettini", Name: "spaghettini", Unit: "serving", PerClickAmount: 1},
	{Key: "tagliatelle", Name: "tagliatelle", Unit: "serving", PerClickAmount: 1},
	{Key: "regatoni", Name: "regatoni", Unit: "serving", PerClickAmount: 1},
	{Key: "fusilli", Name: "fusilli", Unit: "serving", PerClickAmount: 1},
	{Key: "milk", Name: "milk", Unit: "ml", PerClickAmount: 20},
	{Key: "cream", Name: "cream", Unit: "ml", PerClickAmount: 20},
	{Key: "tomato_paste", Name: "tomato_paste", Unit: "g", PerClickAmount: 20},
	{Key: "olive_oil", Name: "olive_oil", Unit: "ml", PerClickAmount: 5},
}
