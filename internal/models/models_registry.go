package models

// All returns pointers to every model in dependency order, suitable for
// AutoMigrate (parents first) and, reversed, for DropTable.
func All() []interface{} {
	return []interface{}{
		&UserAuth{},
		&User{},
		&Tenant{},
		&Landlord{},
		&USCitizen{},
		&InternationalStudent{},
		&Student{},
		&Neighborhood{},
		&Property{},
		&Broker{},
		&Lease{},
		&BrokerTenant{},
	}
}
