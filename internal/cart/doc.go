// Package cart keeps a local, observable mirror of the user's server-side
// cart.
//
// Store is an explicit state container: callers create one per session and
// pass it to whatever needs the cart. Every operation that talks to the
// service first asks the Session for a usable credential. When there is none,
// or the service answers 401, the store triggers the session's forced logout
// and returns nil: authentication problems are handled here and never reach
// the caller as errors.
//
// Mutations are applied locally only after the service accepted them:
//
//   - AddToCart increments an existing line or appends a new one.
//   - UpdateQuantity sets the quantity to exactly the requested value.
//   - RemoveFromCart drops the line; an id the store does not hold is a no-op.
//
// Calls are not serialised. Each response is applied when it arrives, so a
// slow response can overwrite the effect of a newer one (last response wins).
// Callers that fire rapid updates should coalesce them.
package cart
