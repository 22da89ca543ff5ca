// internal/service/outlet/standard.go
package outlet

import "crm-service/internal/domain/outlet"

// StandardOutlets is the directory every fresh install is seeded with.
func StandardOutlets() []outlet.Outlet {
	return []outlet.Outlet{
		{
			Name:        "Training Outlet",
			Code:        "TRAIN",
			Description: "Training and demo outlet for staff learning and customer demos",
			Address:     outlet.Address{Street: "123 Training Street", City: "Manila", State: "Metro Manila", ZipCode: "1000", Country: "Philippines"},
			Phone:       "+63917123456",
			Email:       "training@company.com",
			Manager:     "Training Manager",
			Type:        outlet.TypeStore,
		},
		{
			Name:        "Main Store",
			Code:        "MAIN",
			Description: "Primary retail location and flagship store",
			Address:     outlet.Address{Street: "456 Main Avenue", City: "Manila", State: "Metro Manila", ZipCode: "1001", Country: "Philippines"},
			Phone:       "+63917234567",
			Email:       "main@company.com",
			Manager:     "Store Manager",
			Type:        outlet.TypeStore,
		},
		{
			Name:        "Branch 1",
			Code:        "BR1",
			Description: "First branch location in Quezon City",
			Address:     outlet.Address{Street: "789 Branch Road", City: "Quezon City", State: "Metro Manila", ZipCode: "1100", Country: "Philippines"},
			Phone:       "+63917345678",
			Email:       "branch1@company.com",
			Manager:     "Branch Manager 1",
			Type:        outlet.TypeStore,
		},
		{
			Name:        "Branch 2",
			Code:        "BR2",
			Description: "Second branch location in Makati",
			Address:     outlet.Address{Street: "321 Business District", City: "Makati", State: "Metro Manila", ZipCode: "1200", Country: "Philippines"},
			Phone:       "+63917456789",
			Email:       "branch2@company.com",
			Manager:     "Branch Manager 2",
			Type:        outlet.TypeStore,
		},
		{
			Name:        "Online Store",
			Code:        "ONLINE",
			Description: "E-commerce platform and online sales channel",
			Address:     outlet.Address{Street: "999 Digital Plaza", City: "Taguig", State: "Metro Manila", ZipCode: "1600", Country: "Philippines"},
			Phone:       "+63917567890",
			Email:       "online@company.com",
			Manager:     "E-commerce Manager",
			Type:        outlet.TypeOnline,
		},
		{
			Name:        "Main Warehouse",
			Code:        "WH1",
			Description: "Primary storage and distribution center",
			Address:     outlet.Address{Street: "555 Industrial Zone", City: "Marikina", State: "Metro Manila", ZipCode: "1800", Country: "Philippines"},
			Phone:       "+63917678901",
			Email:       "warehouse@company.com",
			Manager:     "Warehouse Manager",
			Type:        outlet.TypeWarehouse,
		},
	}
}
