/*
Package medcase implements registration and verification of medical
funding cases.

A patient submits a case with a funding goal. Registered verifiers vote
on the pending case and once the approval ratio reaches the configured
quorum the case becomes verified and a deterministic escrow account is
bound to it. After the verification window elapsed the administrator can
override a stalled decision in either direction. Rejected cases can be
closed to release their storage.

Status is monotonic: a case never returns to pending, and verified and
closed are terminal for this engine.
*/
package medcase
