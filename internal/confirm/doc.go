// Package confirm implements the two-step confirmation that guards gadget
// destruction.
//
// A client first asks for a code, which the Broker issues for one gadget
// and holds for five minutes. The destroy request must then echo that exact
// code. Codes are six symbols drawn from Alphabet, single-use, and replaced
// whenever a new code is issued for the same gadget.
//
//	b := confirm.New()
//	code := b.Issue(gadgetID)
//	if err := b.Verify(gadgetID, submitted); err != nil {
//	    // ErrMissingCode, ErrNoActiveCode, ErrExpiredCode or ErrCodeMismatch
//	}
//
// Codes live in a Store. MemoryStore is the only implementation, so codes are
// lost on restart and clients must request a new one.
package confirm
