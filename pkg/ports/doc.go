/*
Package ports defines the driven ports (interfaces) of the Skury coordinator.

These interfaces decouple the message router and the UI contexts from the
concrete browser-like environment, the preference backend, and the remote model.

# Key Interfaces

  - Runtime: What a UI context can ask of the coordinator (messages and storage).
  - PreferenceStore: Last-write-wins scalar preferences (credential, theme).
  - SurfaceLocator, Injector, ScreenCapturer: The tab environment.
  - Model: The remote generative model.
*/
package ports
