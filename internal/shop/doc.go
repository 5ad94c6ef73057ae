// Package shop implements the storefront use cases on top of the API client,
// the stored session and the cart store: account management, catalog
// browsing, checkout, order history and the admin console.
//
// Services share one Deps value. Authentication is uniform: a call that
// needs a credential and finds none (or has it rejected by the service with
// 401) runs the session's forced logout and returns an error matching
// ErrAuthRequired.
package shop
