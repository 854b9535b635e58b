/*
Package core implements the registry host. It's built around the Host
structure that owns the persistent store and the per-scheme registries.

Mutating requests are serialized, each of them runs over its own in-memory
change set that's flushed to the store in a single batch on success and
dropped on any error, so a failed request never leaves partial state.

# Events

You can subscribe to Host events using SubscribeForEvents and
UnsubscribeFromEvents. These methods accept channels that will be used to
send events, so you can control buffering. Channels are never closed by
Host, you can close them after unsubscription.

Events are only sent for persisted changes: a key_registered event follows
a successful key registration and a proof_verified event follows every
recorded verification outcome (including failed proofs when they're
persisted). Subscribers must read events in time, a blocked subscriber
blocks event dispatching to the others.
*/
package core
