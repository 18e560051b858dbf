// Package bot provides ActivityHandler, a ready-made pipeline terminus that
// demultiplexes a turn by activity kind into overridable hook functions.
// Applications populate only the hooks they care about; everything else is
// a no-op. Invoke activities get structured dispatch by name with
// InvokeError converted into the invoke response instead of propagating.
package bot
