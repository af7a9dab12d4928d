/*
Package receipt keeps proof-of-donation records.

The donation extension signals this package after every successful
credit. A record is created on the first donation of a donor to a case
and updated with the cumulative amount on every repeat donation. Records
are never deleted.
*/
package receipt
