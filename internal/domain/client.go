package domain

import "strings"

// Credentials holds the OAuth client-credential record for one tenant.
type Credentials struct {
	TenantID     string `gorm:"column:TENANT_ID" json:"tenant_id"`
	ClientID     string `gorm:"column:CLIENT_ID" json:"client_id"`
	ClientSecret string `gorm:"column:CLIENT_SECRET" json:"client_secret"`
	GrantType    string `gorm:"column:GRANT_TYPE" json:"grant_type"`
}

// Complete reports whether the required credential fields are populated.
// GrantType is optional and defaults to client_credentials at auth time.
func (c Credentials) Complete() bool {
	return c.TenantID != "" && c.ClientID != "" && c.ClientSecret != ""
}

// Client represents one tenant of the pipeline. The SCAC code doubles as the
// target database schema and the blob namespace for that tenant.
type Client struct {
	SCAC        string `gorm:"column:SCAC;primaryKey" json:"scac"`
	Credentials `gorm:"embedded" json:"credentials"`
}

// TableName returns the database table name for Client.
func (Client) TableName() string {
	return "ALVYS_CLIENTS"
}

// NormalizeSCAC upper-cases and trims a SCAC code so lookups, schema names,
// and blob prefixes all agree on one spelling.
func NormalizeSCAC(scac string) string {
	return strings.ToUpper(strings.TrimSpace(scac))
}
