/*
Package verifiers maintains the registry of addresses that are allowed to
vote on medical case verification.

The registry is mutated only through messages signed by the configuration
owner (the administrator). Other extensions check membership through the
Registry controller. Removing a verifier does not rewrite votes that were
already recorded on pending cases.
*/
package verifiers
