// Package session provides the session collaborators used by the xsrf guard.
//
// A Manager binds a session id to every request through a cookie and stores a
// Handle in the request context. The Handle reads and writes string values in a
// Store scoped to that id. Two stores ship with the package: MemoryStore for
// tests and single-process servers, and RedisStore for everything else.
//
//	store := session.NewRedisStore(redisClient, session.WithTTL(24*time.Hour))
//	m, _ := session.NewManager(store, session.Config{})
//	guard := xsrf.New(xsrf.Config{})
//	http.ListenAndServe(":8080", m.Middleware(guard.Protect(appMux)))
package session
