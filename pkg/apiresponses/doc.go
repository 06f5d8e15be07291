// Package apiresponses provides standardized HTTP API response helpers
// shared between the api server and the relay controller.
package apiresponses
