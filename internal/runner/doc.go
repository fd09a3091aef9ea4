// Package runner drives a run: it exchanges the full conversation with the
// model gateway pass by pass and dispatches requested tool calls.
//
// Invariant:
//   - every tool call issued by the model is answered in the conversation by a
//     tool message with the same id, on success and on failure alike, before
//     the conversation is sent again.
//
// Flow of one pass:
//
//	round 1 (tools=auto) -> dispatch tool calls -> round 2 (tools=none) -> persist -> pace
//
// A successful call of the completion tool ends the run inside the pass that
// issued it. Everything else that goes wrong in a pass is recorded in the
// pass's history record and the loop continues until the iteration budget is
// spent.
package runner
