// Package memory holds the conversation exchanged with the model gateway.
//
// Persistence model:
//   - The conversation is append-only; every round resends all of it.
//   - Assistant messages keep their tool calls and tool messages keep the
//     id of the call they answer, so the transcript can be replayed.
//   - Snapshots are written whole with SaveConversation; there is no
//     incremental format.
package memory
