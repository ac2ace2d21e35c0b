// Package normalize turns the three raw settlement sources into keyed
// single-source tables: it selects and renames the relevant columns, drops
// duplicate rows, restricts generation and demand to the analysis window and
// collapses generation over fuel type.
//
// Every returned frame is unique on its SettlementKey except cost and
// demand, which keep rows that differ only in their measurement. The merge
// stage rejects such rows rather than denormalizing them.
package normalize
