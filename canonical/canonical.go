// Package canonical implements the deterministic encoding and digest
// function spec.md §4.1 requires: canonical(x) for hashing/signing must be
// bit-identical across implementations, which rules out relying on a JSON
// library's incidental struct-field ordering (spec.md §9's design note
// calls this out explicitly). Each Reports value type therefore gets an
// explicit, hand-written field-order mapping into a sorted-key JSON tree
// instead of `json.Marshal(struct)` directly — the struct's Go field order
// is irrelevant to the wire digest.
//
// There is no library in the retrieval pack that performs canonical
// struct-to-bytes encoding with signature-field omission semantics; the
// closest analogue, RLP (used throughout the teacher for header/transaction
// hashing), produces a binary format rather than the JSON-like wire format
// spec.md's test-vector interop requires, so this package is necessarily
// built on encoding/json's sorted-map-key behavior plus hand-written field
// ordering rather than adapting RLP.
package canonical

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tos-network/reports/repcrypto"
	"github.com/tos-network/reports/reptypes"
)

// Encode produces the canonical byte sequence for v: a JSON object with
// sorted keys and no insignificant whitespace. encoding/json already sorts
// map[string]any keys on Marshal, so building an explicit ordered map per
// type (see reportMap and its helpers below) and encoding that map is sufficient to make the
// output independent of this package's own source-level field order.
func Encode(v map[string]any) ([]byte, error) {
	buf, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("canonical: encode: %w", err)
	}
	// json.Marshal never emits insignificant whitespace; Compact is a
	// defense-in-depth guard against a future encoder change adding any.
	var out bytes.Buffer
	if err := json.Compact(&out, buf); err != nil {
		return nil, fmt.Errorf("canonical: compact: %w", err)
	}
	return out.Bytes(), nil
}

func workItemMap(w reptypes.WorkItem) map[string]any {
	return map[string]any{
		"id":          w.ID,
		"programHash": w.ProgramHash,
		"inputData":   w.InputData,
		"gasLimit":    w.GasLimit,
	}
}

func workPackageMap(p reptypes.WorkPackage) map[string]any {
	items := make([]any, len(p.WorkItems))
	for i, it := range p.WorkItems {
		items[i] = workItemMap(it)
	}
	return map[string]any{
		"authorizationToken": p.AuthorizationToken,
		"authorizationServiceDetails": map[string]any{
			"host":     p.AuthorizationServiceDetails.Host,
			"url":      p.AuthorizationServiceDetails.URL,
			"function": p.AuthorizationServiceDetails.Function,
		},
		"context":   p.Context,
		"workItems": items,
	}
}

func refinementContextMap(c reptypes.RefinementContext) map[string]any {
	cur := make([]any, len(c.CurrentGuarantors))
	for i, g := range c.CurrentGuarantors {
		cur[i] = string(g)
	}
	prev := make([]any, len(c.PreviousGuarantors))
	for i, g := range c.PreviousGuarantors {
		prev[i] = string(g)
	}
	return map[string]any{
		"anchorBlockRoot":    c.AnchorBlockRoot,
		"anchorBlockNumber":  c.AnchorBlockNumber,
		"beefyMmrRoot":       c.BeefyMmrRoot,
		"currentSlot":        c.CurrentSlot,
		"currentEpoch":       c.CurrentEpoch,
		"currentGuarantors":  cur,
		"previousGuarantors": prev,
	}
}

func availabilitySpecMap(a *reptypes.AvailabilitySpec) any {
	if a == nil {
		return nil
	}
	hashes := make([]any, len(a.FragmentHashes))
	for i, h := range a.FragmentHashes {
		hashes[i] = h
	}
	return map[string]any{
		"totalFragments": a.TotalFragments,
		"dataFragments":  a.DataFragments,
		"fragmentHashes": hashes,
	}
}

// reportMap builds the ordered map for a WorkReport's content, excluding
// guarantorSignature and guarantorPublicKey. Both are per-endorser metadata
// rather than report content: §4.2.2's endorsement merge relies on distinct
// guarantors producing the *same* digest for the *same* underlying report,
// which only holds if neither field feeds the digest. verify(signable(R),
// signature, publicKey) in §3 treats publicKey as an external argument to
// verification, not as signed content, which is consistent with this
// reading.
func reportMap(r reptypes.WorkReport) map[string]any {
	deps := make([]any, len(r.Dependencies))
	for i, d := range r.Dependencies {
		deps[i] = d.Hex()
	}
	return map[string]any{
		"workPackage":       workPackageMap(r.WorkPackage),
		"refinementContext": refinementContextMap(r.RefinementContext),
		"pvmOutput":         r.PvmOutput,
		"gasUsed":           r.GasUsed,
		"availabilitySpec":  availabilitySpecMap(r.AvailabilitySpec),
		"coreIndex":         r.CoreIndex,
		"slot":              r.Slot,
		"dependencies":      deps,
	}
}

// Signable returns the canonical byte encoding of report's content, the
// message every guarantor signs and digest() hashes.
func Signable(report reptypes.WorkReport) ([]byte, error) {
	return Encode(reportMap(report))
}

// Full returns the canonical byte encoding of report's content plus its
// per-endorser guarantorPublicKey/guarantorSignature, for a stable
// representation of one specific endorsement, e.g. test-vector
// round-tripping of a single Guarantee extrinsic.
func Full(report reptypes.WorkReport) ([]byte, error) {
	m := reportMap(report)
	m["guarantorPublicKey"] = string(report.GuarantorPublicKey)
	m["guarantorSignature"] = report.GuarantorSignature
	return Encode(m)
}

// Digest computes spec.md §4.1's digest(report): SHA-256 over the
// canonical signable encoding, as a Work-Digest. Digest is a pure function
// of report content excluding the signature and the endorsing guarantor's
// public key, so two reports that differ only in who signed them share a
// digest — this is load-bearing for the guarantee processor's ρ merge step
// (spec.md §4.2.2).
func Digest(report reptypes.WorkReport) (reptypes.Digest, error) {
	b, err := Signable(report)
	if err != nil {
		return reptypes.Digest{}, err
	}
	return repcrypto.SHA256(b), nil
}
