// Package shutdown coordinates graceful termination of calcmesh-server.
//
// A Handler waits for SIGINT, SIGTERM or an explicit Trigger, then runs
// the registered hooks in reverse order under a shared deadline:
//
//	h := shutdown.NewHandler(10 * time.Second)
//	h.OnShutdown(srv.Shutdown)
//	err := h.Wait(ctx)
package shutdown
