// Package segment turns a boundary list into row-range segments and hands
// them to a Persistor.
//
// Extraction copies each row range into a buffer it owns, so segments stay
// valid after the source buffer is released. Persistence failures are
// isolated per segment: one bad write is logged and counted, and the
// remaining segments of the group are still written.
package segment
