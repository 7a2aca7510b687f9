package config

import (
	"errors"
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"dealerinspect/models"
	"dealerinspect/pkg/inspection"
)

// RunAllSeeding creates a demo tenant with master data and a default
// inspection configuration. Safe to run repeatedly; it skips anything that
// already exists.
func RunAllSeeding() error {
	log.Println("=== Starting Database Seeding ===")

	log.Println("[1/3] Seeding demo company and admin user...")
	company, err := seedDemoCompany()
	if err != nil {
		return err
	}

	log.Println("[2/3] Seeding dropdown masters...")
	if err := seedDropdownMasters(company); err != nil {
		return err
	}

	log.Println("[3/3] Seeding default configurations...")
	if err := seedDefaultConfigs(company); err != nil {
		return err
	}

	log.Println("=== Database Seeding Complete ===")
	return nil
}

func seedDemoCompany() (*models.Company, error) {
	var company models.Company
	err := DB.Where("name = ?", "Demo Motors").First(&company).Error
	if err == nil {
		return &company, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	company = models.Company{
		Name:     "Demo Motors",
		Email:    "admin@demomotors.example",
		IsActive: true,
	}
	if err := DB.Create(&company).Error; err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("changeme"), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	admin := models.User{
		CompanyID:    company.ID,
		Name:         "Demo Admin",
		Email:        "admin@demomotors.example",
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		IsActive:     true,
	}
	if err := DB.Create(&admin).Error; err != nil {
		return nil, err
	}
	log.Println("Created demo company:", company.ID)
	return &company, nil
}

func seedDropdownMasters(company *models.Company) error {
	masters := []models.DropdownMaster{
		{
			CompanyID: company.ID,
			Name:      "paint_condition",
			IsActive:  true,
			Values: models.DropdownValueList{
				{ID: "excellent", Value: "excellent", DisplayValue: "Excellent", DisplayOrder: 0, IsActive: true, IsDefault: true},
				{ID: "good", Value: "good", DisplayValue: "Good", DisplayOrder: 1, IsActive: true},
				{ID: "fair", Value: "fair", DisplayValue: "Fair", DisplayOrder: 2, IsActive: true},
				{ID: "poor", Value: "poor", DisplayValue: "Poor", DisplayOrder: 3, IsActive: true},
			},
		},
		{
			CompanyID: company.ID,
			Name:      "tyre_condition",
			IsActive:  true,
			Values: models.DropdownValueList{
				{ID: "new", Value: "new", DisplayValue: "New", DisplayOrder: 0, IsActive: true},
				{ID: "worn", Value: "worn", DisplayValue: "Worn", DisplayOrder: 1, IsActive: true, IsDefault: true},
				{ID: "replace", Value: "replace", DisplayValue: "Needs Replacement", DisplayOrder: 2, IsActive: true},
			},
		},
		{
			CompanyID: company.ID,
			Name:      "service_status",
			IsActive:  true,
			Values: models.DropdownValueList{
				{ID: "pending", Value: "pending", DisplayValue: "Pending", DisplayOrder: 0, IsActive: true, IsDefault: true},
				{ID: "in_progress", Value: "in_progress", DisplayValue: "In Progress", DisplayOrder: 1, IsActive: true},
				{ID: "done", Value: "done", DisplayValue: "Done", DisplayOrder: 2, IsActive: true},
			},
		},
	}

	for _, m := range masters {
		var count int64
		if err := DB.Model(&models.DropdownMaster{}).
			Where("company_id = ? AND name = ?", m.CompanyID, m.Name).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		if err := DB.Create(&m).Error; err != nil {
			return err
		}
		log.Println("Created dropdown master:", m.Name)
	}
	return nil
}

func seedDefaultConfigs(company *models.Company) error {
	stores := inspection.NewStores(DB)

	for _, purpose := range []string{models.PurposeInspection, models.PurposeTradeIn} {
		var count int64
		if err := DB.Model(&models.InspectionConfig{}).
			Where("company_id = ? AND purpose = ?", company.ID, purpose).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		cfg := models.InspectionConfig{
			CompanyID: company.ID,
			Purpose:   purpose,
			Name:      "Standard " + purpose,
			Version:   "1.0.0",
			IsActive:  true,
			IsDefault: true,
			Settings: &models.ConfigSettings{
				MaxPhotosPerField: 5,
				MaxVideosPerField: 1,
				AutosaveSeconds:   30,
			},
		}
		if err := inspection.SeedCategories(&cfg); err != nil {
			return err
		}

		if purpose == models.PurposeInspection {
			if err := seedSampleTree(&cfg, stores); err != nil {
				return err
			}
		}

		if err := DB.Create(&cfg).Error; err != nil {
			return err
		}
		log.Printf("Created default %s configuration: %s", purpose, cfg.ID)
	}
	return nil
}

// seedSampleTree gives the demo inspection configuration a usable starting
// shape: an exterior section with a dropdown-bound field and a recon cost
// estimate with a calculation over it.
func seedSampleTree(cfg *models.InspectionConfig, stores *inspection.Stores) error {
	sec, err := inspection.AddSection(cfg, inspection.CategoryAtArrival, inspection.SectionParams{
		Name:       "Exterior",
		IsExpanded: true,
	})
	if err != nil {
		return err
	}
	if _, err := inspection.AddField(cfg, sec.SectionID, inspection.FieldParams{
		Name:      "Paint Condition",
		FieldType: models.FieldTypeDropdown,
		HasImage:  true,
		HasNotes:  true,
		DropdownConfig: &models.DropdownConfig{
			DropdownName: "paint_condition",
		},
	}, stores); err != nil {
		return err
	}

	costs, err := inspection.AddSection(cfg, inspection.CategoryAfterReconditioning, inspection.SectionParams{
		Name: "Reconditioning Costs",
	})
	if err != nil {
		return err
	}
	parts, err := inspection.AddField(cfg, costs.SectionID, inspection.FieldParams{
		Name:      "Parts Cost",
		FieldType: models.FieldTypeCurrency,
	}, stores)
	if err != nil {
		return err
	}
	labour, err := inspection.AddField(cfg, costs.SectionID, inspection.FieldParams{
		Name:      "Labour Cost",
		FieldType: models.FieldTypeCurrency,
	}, stores)
	if err != nil {
		return err
	}
	_, err = inspection.AddCalculation(cfg, inspection.CategoryAfterReconditioning, inspection.CalculationParams{
		Name:         "Total Recon Cost",
		InternalName: "total_recon_cost",
		Formula: []models.FormulaToken{
			{TokenType: models.TokenField, FieldID: parts.FieldID, Order: 0},
			{TokenType: models.TokenOperator, Operator: "+", Order: 1},
			{TokenType: models.TokenField, FieldID: labour.FieldID, Order: 2},
		},
	})
	return err
}
