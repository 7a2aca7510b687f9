package inspection

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"dealerinspect/models"
)

// Stores is the gorm-backed implementation of the engine's store interfaces.
// Absent rows come back as (nil, nil); only real database failures surface as
// errors.
type Stores struct {
	db *gorm.DB
}

// NewStores wraps a gorm handle.
func NewStores(db *gorm.DB) *Stores {
	return &Stores{db: db}
}

// GetCompany implements CompanyStore.
func (s *Stores) GetCompany(id uuid.UUID) (*models.Company, error) {
	var company models.Company
	err := s.db.Where("id = ? AND is_active = true", id).First(&company).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &company, nil
}

// GetConfig implements ConfigStore. The active flag is deliberately ignored
// so explicitly addressed historical configurations still load.
func (s *Stores) GetConfig(companyID, id uuid.UUID) (*models.InspectionConfig, error) {
	var cfg models.InspectionConfig
	err := s.db.Where("id = ? AND company_id = ?", id, companyID).First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// GetDefaultConfig implements ConfigStore.
func (s *Stores) GetDefaultConfig(companyID uuid.UUID, purpose string) (*models.InspectionConfig, error) {
	var cfg models.InspectionConfig
	err := s.db.
		Where("company_id = ? AND purpose = ? AND is_default = true AND is_active = true", companyID, purpose).
		First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// GetVehicle implements VehicleStore.
func (s *Stores) GetVehicle(companyID uuid.UUID, stockID, vehicleType string) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	err := s.db.
		Where("company_id = ? AND stock_id = ? AND type = ?", companyID, stockID, vehicleType).
		First(&vehicle).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &vehicle, nil
}

// GetDropdown implements DropdownStore. Lookup is by row id; inactive masters
// still expand on the read path so historical forms keep their option labels.
func (s *Stores) GetDropdown(companyID uuid.UUID, id string) (*models.DropdownMaster, error) {
	dropdownID, err := uuid.Parse(id)
	if err != nil {
		return nil, nil
	}
	var master models.DropdownMaster
	err = s.db.Where("id = ? AND company_id = ?", dropdownID, companyID).First(&master).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &master, nil
}

// FindDropdown implements DropdownLookup for the mutation API: active masters
// only, addressed by id or by name, scoped to the company. New bindings must
// not point at inactive or foreign masters even though existing ones still
// render.
func (s *Stores) FindDropdown(companyID uuid.UUID, idOrName string) (*models.DropdownMaster, error) {
	q := s.db.Where("company_id = ? AND is_active = true", companyID)
	if dropdownID, err := uuid.Parse(idOrName); err == nil {
		q = q.Where("id = ?", dropdownID)
	} else {
		q = q.Where("name = ?", idOrName)
	}
	var master models.DropdownMaster
	err := q.First(&master).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &master, nil
}
