/*
Package release implements the multisig disbursement of escrowed case
funds to medical facilities.

Any board member can propose a release of part of an escrow balance.
Other members approve or reject the proposal. Once enough approvals are
collected the funds move from the case escrow to the facility in the
same transaction. A proposal that can no longer reach the approval
threshold is rejected.
*/
package release
