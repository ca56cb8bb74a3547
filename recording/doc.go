// Package recording captures lighting commands as a replayable stream.
//
// A [Recorder] implements gpucore.CommandBuffer by appending typed command
// structs instead of talking to a device. The finished [Recording] can be
// inspected (counted, filtered) or replayed onto any other CommandBuffer,
// such as a host adapter that submits to a GPU queue.
//
// Typed command structs keep the stream inspectable and easy to assert on
// in tests:
//
//	rec := recording.NewRecorder()
//	renderer.Render(rec, frame)
//	r := rec.FinishRecording()
//	fmt.Println(r.Count(recording.CmdDrawMesh))
//	r.Playback(deviceCommandBuffer)
package recording
