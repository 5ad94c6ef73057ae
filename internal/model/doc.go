// Package model defines the storefront wire types shared by the API client,
// the cart store and the CLI.
//
// All types mirror the JSON bodies exchanged with the remote storefront
// service. Prices are exact decimals (see Price) because the service is not
// consistent about sending them as JSON strings or JSON numbers.
//
// # Validation
//
// Request types that originate from user input (LoginRequest, SignupRequest,
// ProductInput, ProfileUpdate) carry a Validate method. Validate reports every
// failing field at once through *ValidationError so a caller can show all
// problems in one pass.
package model
