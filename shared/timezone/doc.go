// Package timezone provides timezone utilities for the application.
//
// Open-run targets publish their release instants in the camping site's local
// time, so every schedule-facing timestamp goes through this package instead
// of time.Now directly.
//
//  1. Basic usage after initialization:
//     now := timezone.Now()                    // current time in app timezone
//     appTime := timezone.ToAppTime(someTime)  // convert any time to app timezone
//
//  2. Formatting and parsing in the app timezone:
//     formatted := timezone.Format(time.Now(), "2006-01-02 15:04:05")
//     t, err := timezone.Parse("2006-01-02", "2026-03-01")
//
// The timezone is configured via the APP_TIMEZONE environment variable
// (IANA names such as "Asia/Seoul" or "UTC") and is initialized when the
// package is imported.
package timezone
