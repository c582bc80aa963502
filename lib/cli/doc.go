// Package cli implements the ktaudit command line.
//
//	ktaudit parse <token>                          decode an obsolescence token
//	ktaudit check <timestamp> [--reference N] [--now N]
//	ktaudit audit [chain.yaml]                     audit a chain file once
//	ktaudit watch [chain.yaml]                     re-audit every watch.interval
//	ktaudit now                                    synchronise with NTP and print the time
//
// Every command reads configuration through lib/config. --offline replaces
// the NTP time source with the system clock.
package cli
