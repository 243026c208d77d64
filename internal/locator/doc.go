// Package locator finds store locations on a neighbourhood grid.
//
// A grid is a rectangle of houses (Occupied) and plots (Empty). A plot is a
// suitable store location when its taxicab distance to every house is at most
// k. The work runs as a fixed pipeline: Validate, Scan, IsFeasible per plot,
// then Aggregate in scan order.
//
// Everything here is pure. Inputs are copied on validation and nothing is
// retained between calls, so a Solver may be shared by concurrent requests.
// No SQL, HTTP or logging code is allowed in this package.
package locator
