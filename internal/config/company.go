package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// CompanyProfile is the seller identity printed on PDFs and emails.
type CompanyProfile struct {
	Name        string `toml:"name"`
	LegalName   string `toml:"legal_name"`
	Address     string `toml:"address"`
	GSTIN       string `toml:"gstin"`
	Email       string `toml:"email"`
	Phone       string `toml:"phone"`
	Website     string `toml:"website"`
	TeamName    string `toml:"team_name"`
	LogoURL     string `toml:"logo_url"`
	Signatory   string `toml:"signatory"`
	Designation string `toml:"designation"`
}

type companyFile struct {
	Company CompanyProfile `toml:"company"`
}

// DefaultCompanyProfile is used when no profile file is configured.
func DefaultCompanyProfile() CompanyProfile {
	return CompanyProfile{
		Name:        "Complia Services",
		LegalName:   "Complia Services Ltd",
		Address:     "Plot no.9, Third Floor, Paschim Vihar Extn.",
		Email:       "info@nyife.chat",
		Phone:       "+91 11 430 22 315",
		Website:     "nyife.chat",
		TeamName:    "Nyife Team",
		Signatory:   "Authorized Signatory",
		Designation: "Business Manager",
	}
}

// LoadCompanyProfile loads the seller profile from a TOML file. Empty fields
// keep their default values. An empty path returns the defaults.
func LoadCompanyProfile(path string) (CompanyProfile, error) {
	profile := DefaultCompanyProfile()
	if path == "" {
		return profile, nil
	}
	if _, err := os.Stat(path); err != nil {
		return profile, fmt.Errorf("company profile %s: %w", path, err)
	}

	file := companyFile{Company: profile}
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return profile, fmt.Errorf("failed to load company profile: %w", err)
	}
	return file.Company, nil
}
