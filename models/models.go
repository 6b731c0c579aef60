package models

// All lists every table for AutoMigrate, parents first.
func All() []interface{} {
	return []interface{}{
		&User{},
		&UserSettings{},
		&OperationalCost{},
		&Client{},
		&Vehicle{},
		&CatalogProduct{},
		&Service{},
		&ServiceProduct{},
		&PaymentMethod{},
		&PaymentMethodInstallment{},
		&Quote{},
		&FinancialAccount{},
		&FinancialTransaction{},
		&PlannedItem{},
		&ReminderLog{},
	}
}
