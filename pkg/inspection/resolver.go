package inspection

import (
	"fmt"

	"github.com/google/uuid"

	"dealerinspect/models"
)

// CompanyStore looks up tenant records. Implementations return (nil, nil)
// when the entity does not exist.
type CompanyStore interface {
	GetCompany(id uuid.UUID) (*models.Company, error)
}

// ConfigStore looks up configuration documents scoped to a company.
// GetConfig ignores the active flag so historical configurations load when
// addressed explicitly; GetDefaultConfig only considers active ones.
type ConfigStore interface {
	GetConfig(companyID, id uuid.UUID) (*models.InspectionConfig, error)
	GetDefaultConfig(companyID uuid.UUID, purpose string) (*models.InspectionConfig, error)
}

// VehicleStore looks up vehicle records scoped to a company.
type VehicleStore interface {
	GetVehicle(companyID uuid.UUID, stockID, vehicleType string) (*models.Vehicle, error)
}

// DropdownStore fetches dropdown masters for binding expansion.
type DropdownStore interface {
	GetDropdown(companyID uuid.UUID, id string) (*models.DropdownMaster, error)
}

// ResolveRequest names a company, a purpose, and optionally an explicit
// configuration id or a vehicle whose last-used configuration should win.
type ResolveRequest struct {
	CompanyID uuid.UUID
	Purpose   string
	ConfigID  *uuid.UUID
	StockID   string
}

// Resolved is the outcome of configuration resolution: the selected document,
// its company, the vehicle (when a stock id was given) and every dropdown
// master referenced by the document's fields, expanded so the caller needs no
// second round-trip.
type Resolved struct {
	Config    *models.InspectionConfig
	Company   *models.Company
	Vehicle   *models.Vehicle
	Dropdowns []models.DropdownMaster
}

// Resolver selects the configuration version a form should render against.
// It is read-only; a resolved document handed to a long-lived UI session can
// go stale against concurrent edits, so callers re-resolve rather than cache.
type Resolver struct {
	companies CompanyStore
	configs   ConfigStore
	vehicles  VehicleStore
	dropdowns DropdownStore
}

// NewResolver creates a resolver over the given stores.
func NewResolver(companies CompanyStore, configs ConfigStore, vehicles VehicleStore, dropdowns DropdownStore) *Resolver {
	return &Resolver{companies: companies, configs: configs, vehicles: vehicles, dropdowns: dropdowns}
}

// Resolve applies the precedence rules: an explicit config id always wins;
// else a vehicle's last-used config id; else the company's active default
// for the purpose.
func (r *Resolver) Resolve(req ResolveRequest) (*Resolved, error) {
	if err := ValidatePurpose(req.Purpose); err != nil {
		return nil, err
	}

	company, err := r.companies.GetCompany(req.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("load company: %w", err)
	}
	if company == nil {
		return nil, notFound("company", req.CompanyID.String())
	}

	var vehicle *models.Vehicle
	if req.StockID != "" {
		vehicle, err = r.vehicles.GetVehicle(req.CompanyID, req.StockID, req.Purpose)
		if err != nil {
			return nil, fmt.Errorf("load vehicle: %w", err)
		}
		if vehicle == nil {
			return nil, notFound("vehicle", req.StockID)
		}
	}

	cfg, err := r.selectConfig(req, vehicle)
	if err != nil {
		return nil, err
	}

	dropdowns, err := r.expandDropdowns(cfg)
	if err != nil {
		return nil, err
	}

	return &Resolved{Config: cfg, Company: company, Vehicle: vehicle, Dropdowns: dropdowns}, nil
}

func (r *Resolver) selectConfig(req ResolveRequest, vehicle *models.Vehicle) (*models.InspectionConfig, error) {
	if req.ConfigID != nil {
		cfg, err := r.configs.GetConfig(req.CompanyID, *req.ConfigID)
		if err != nil {
			return nil, fmt.Errorf("load configuration: %w", err)
		}
		if cfg == nil {
			return nil, notFound("configuration", req.ConfigID.String())
		}
		return cfg, nil
	}

	if vehicle != nil {
		if last := vehicle.LastConfigID(req.Purpose); last != nil {
			cfg, err := r.configs.GetConfig(req.CompanyID, *last)
			if err != nil {
				return nil, fmt.Errorf("load configuration: %w", err)
			}
			if cfg != nil {
				return cfg, nil
			}
			// stale back-reference; fall through to the company default
		}
	}

	cfg, err := r.configs.GetDefaultConfig(req.CompanyID, req.Purpose)
	if err != nil {
		return nil, fmt.Errorf("load default configuration: %w", err)
	}
	if cfg == nil {
		return nil, notFound("configuration", "")
	}
	return cfg, nil
}

// expandDropdowns fetches every dropdown master referenced by the document's
// fields, once each. Bindings whose master has since been deleted are
// skipped: a historical configuration must still render, and the field keeps
// its inline custom options.
func (r *Resolver) expandDropdowns(cfg *models.InspectionConfig) ([]models.DropdownMaster, error) {
	seen := make(map[string]bool)
	var out []models.DropdownMaster
	for ci := range cfg.Categories {
		for si := range cfg.Categories[ci].Sections {
			for _, f := range cfg.Categories[ci].Sections[si].Fields {
				if f.FieldType != models.FieldTypeDropdown || f.DropdownConfig == nil {
					continue
				}
				id := f.DropdownConfig.DropdownID
				if id == "" || seen[id] {
					continue
				}
				seen[id] = true
				master, err := r.dropdowns.GetDropdown(cfg.CompanyID, id)
				if err != nil {
					return nil, fmt.Errorf("expand dropdown %s: %w", id, err)
				}
				if master != nil {
					out = append(out, *master)
				}
			}
		}
	}
	return out, nil
}
