package models

// All lists every table in migration order.
func All() []any {
	return []any{&Account{}, &FarmerProfile{}, &CoffeeHarvest{}, &MilkHarvest{}, &Session{}}
}
