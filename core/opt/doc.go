// Package opt formulates and solves the consumer flexibility scheduling
// problem: a flexible load, rooftop PV, grid exchange and optionally a
// battery are dispatched over a daily horizon to minimise cost or a
// normalised cost/comfort trade-off. The package selects decision
// variables, objective and constraint families from the system
// parameters, hands the resulting LP to an opaque solver backend and
// extracts both the primal schedule and the shadow prices of the
// binding constraints. An investment variant additionally sizes the
// battery.
package opt
