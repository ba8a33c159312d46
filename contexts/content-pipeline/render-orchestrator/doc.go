// Package renderorchestrator implements the render-job state machine of the
// content pipeline: it reacts to script.generated events by driving a
// scene-by-scene generation loop and owns the voiceover-attach, publish,
// and retry operations on render jobs.
//
// The module keeps domain/application logic decoupled from runtime/platform
// concerns through ports and adapter composition.
package renderorchestrator
