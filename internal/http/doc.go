// Package http exposes the activity directory over a small JSON API.
//
// The router serves the following endpoints:
//   - GET /activities: lists activities in storage order. Optional query
//     parameters day (weekday name), start_time and end_time ("HH:MM") narrow
//     the listing to activities meeting on that day, starting at or after
//     start_time and ending at or before end_time.
//   - GET /activities/{name}: returns one activity.
//   - POST /activities/{name}/signup?email=...: adds a participant.
//   - DELETE /activities/{name}/unregister?email=...: removes a participant.
//   - POST /auth/login: verifies a teacher login. Body: {"username","password"}.
//     Response: {"username","display_name","role"}.
//
// Activity responses use the `activityDTO` payload defined in
// activity_handler.go. Errors are reported as {"message"} with an optional
// "errors" map of field validation messages.
package http
