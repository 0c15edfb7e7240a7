// Package driving defines the interfaces the outer UI collaborator
// calls IN through (primary ports). The side panel, settings form and
// any CLI front-end depend on these interfaces only; core services
// implement them.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: driven ports, adapters
package driving
