/*
Package donation moves donated funds into the escrow account of a
verified medical case.

Each asset class of the funding goal caps its own vault: a donation is
rejected if it would push the vault balance above the goal plus the
configured buffer. Every successful donation updates the cumulative
donor record and signals the receipt issuer.
*/
package donation
