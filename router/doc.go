// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the pollbooth API.

# Route Registration

	mux := router.NewRouter(store.New(conn, cfg.DriverName()), cfg)

# Endpoints

Health:

	GET /health

Voting (public):

	GET  /polls?filter=active|past - Poll list with featured poll
	GET  /polls/{id}               - Voting form data (303 to /polls once closed)
	POST /polls/{id}/vote          - Cast a vote (303 to results or list)
	GET  /polls/{id}/results       - Ranked choices with percentages

Admin (Authorization: Bearer <token> except login):

	POST   /admin/login
	GET    /admin
	GET    /admin/dashboard
	GET    /admin/polls?q=&active=
	POST   /admin/polls
	GET    /admin/polls/{id}
	PUT    /admin/polls/{id}
	DELETE /admin/polls/{id}
	POST   /admin/polls/{id}/choices
	GET    /admin/choices?poll=&q=
	PUT    /admin/choices/{id}
	DELETE /admin/choices/{id}

The admin console uses handlers.DefaultAdminSite().
*/
package router
