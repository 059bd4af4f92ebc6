/*
 * Copyright 2024-2025 Raamsri Kumar <raam@tinkershack.in>
 * Copyright 2024-2025 The StrataSTOR Authors and Contributors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package errors

import "net/http"

const (
	DomainConfig       Domain = "CONFIG"
	DomainServer       Domain = "SERVER"
	DomainCommand      Domain = "CMD"
	DomainLifecycle    Domain = "LIFECYCLE"
	DomainDevice       Domain = "DEVICE"
	DomainIO           Domain = "IO"
	DomainHiddenArea   Domain = "HIDDENAREA"
	DomainFreeze       Domain = "FREEZE"
	DomainWipe         Domain = "WIPE"
	DomainVerify       Domain = "VERIFY"
	DomainCertificate  Domain = "CERT"
	DomainOrchestrator Domain = "ORCH"
	DomainMisc         Domain = "MISC"
)

// ErrorCode represents unique error identifiers
type ErrorCode int

// Domain represents the subsystem where the error originated
type Domain string

type EraserError struct {
	Code       ErrorCode `json:"code"`
	Domain     Domain    `json:"domain"`
	Message    string    `json:"message"`
	Details    string    `json:"details,omitempty"`
	HTTPStatus int       `json:"-"`

	// Metadata carries additional contextual information that doesn't fit
	// into the standard error fields but is valuable for debugging, API
	// responses, and the certificate/progress-event metadata blobs.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Error code ranges:
// 1000-1099: Configuration errors
// 1100-1199: Server errors
// 1300-1399: Command execution
// 1500-1599: Lifecycle management
// 3000-3099: Device discovery/state errors
// 3100-3199: Block I/O errors
// 3200-3299: Hidden-area (HPA/DCO) errors
// 3300-3399: Freeze mitigation errors
// 3400-3499: Wipe execution errors
// 3500-3599: Verification errors
// 3600-3699: Certificate errors
// 3700-3799: Orchestrator errors
const (
	// Configuration Errors (1000-1099)
	ConfigNotFound = 1000 + iota
	ConfigInvalid
	ConfigLoadFailed
	ConfigWriteFailed
	ConfigPermissionDenied
	ConfigDirectoryError
	ConfigValidationFailed
	ConfigMarshalFailed
	ConfigUnmarshalFailed
	ConfigHomeDirectoryError
	ConfigReadError
	ConfigWriteError
	ConfigParseError
)

const (
	// Server Errors (1100-1199)
	ServerStart = 1100 + iota
	ServerShutdown
	ServerBind
	ServerTimeout
	ServerMiddleware
	ServerRouting
	ServerRequestValidation
	ServerResponseError
	ServerContextCancelled
	ServerTLSError
	ServerInternalError
	ServerBadRequest
)

const (
	// Command Execution (1300-1399)
	CommandNotFound = 1300 + iota
	CommandExecution
	CommandTimeout
	CommandPermission
	CommandInvalidInput
	CommandOutputParse
	CommandSignal
	CommandContext
	CommandPipe
	CommandWorkDir
)

const (
	// Lifecycle Management (1500-1599)
	LifecyclePID = 1500 + iota
	LifecycleShutdown
	LifecycleSignal
	LifecycleReload
	LifecycleHook
	LifecycleState
	LifecycleLock
	LifecycleCleanup
	LifecycleDaemon
	LifecycleResource
)

const (
	// Miscellaneous (1600-1699)
	Usage = 1600 + iota
	Internal
	NotFoundError
	LoggerError
)

var errorDefinitions = map[ErrorCode]struct {
	message    string
	domain     Domain
	httpStatus int
}{
	Usage:         {"Invalid usage", DomainMisc, http.StatusBadRequest},
	Internal:      {"Internal error", DomainMisc, http.StatusInternalServerError},
	NotFoundError: {"Not found", DomainMisc, http.StatusNotFound},
	LoggerError:   {"Logger error", DomainMisc, http.StatusInternalServerError},

	// Configuration errors
	ConfigNotFound:           {"Configuration file not found", DomainConfig, http.StatusNotFound},
	ConfigInvalid:            {"Invalid configuration format", DomainConfig, http.StatusBadRequest},
	ConfigLoadFailed:         {"Failed to load configuration", DomainConfig, http.StatusInternalServerError},
	ConfigWriteFailed:        {"Failed to write configuration", DomainConfig, http.StatusInternalServerError},
	ConfigPermissionDenied:   {"Permission denied accessing config", DomainConfig, http.StatusForbidden},
	ConfigDirectoryError:     {"Config directory error", DomainConfig, http.StatusInternalServerError},
	ConfigValidationFailed:   {"Configuration validation failed", DomainConfig, http.StatusBadRequest},
	ConfigMarshalFailed:      {"Failed to serialize configuration", DomainConfig, http.StatusInternalServerError},
	ConfigUnmarshalFailed:    {"Failed to deserialize configuration", DomainConfig, http.StatusInternalServerError},
	ConfigHomeDirectoryError: {"Failed to get home directory", DomainConfig, http.StatusInternalServerError},
	ConfigReadError:          {"Error reading configuration", DomainConfig, http.StatusInternalServerError},
	ConfigWriteError:         {"Error writing configuration", DomainConfig, http.StatusInternalServerError},
	ConfigParseError:         {"Error parsing configuration", DomainConfig, http.StatusInternalServerError},

	// Server errors
	ServerStart:             {"Failed to start server", DomainServer, http.StatusInternalServerError},
	ServerShutdown:          {"Error during server shutdown", DomainServer, http.StatusInternalServerError},
	ServerBind:              {"Failed to bind server port", DomainServer, http.StatusInternalServerError},
	ServerTimeout:           {"Server operation timed out", DomainServer, http.StatusGatewayTimeout},
	ServerMiddleware:        {"Middleware execution failed", DomainServer, http.StatusInternalServerError},
	ServerRouting:           {"Route handling error", DomainServer, http.StatusInternalServerError},
	ServerRequestValidation: {"Request validation failed", DomainServer, http.StatusBadRequest},
	ServerResponseError:     {"Error generating response", DomainServer, http.StatusInternalServerError},
	ServerContextCancelled:  {"Server context cancelled", DomainServer, http.StatusServiceUnavailable},
	ServerTLSError:          {"TLS configuration error", DomainServer, http.StatusInternalServerError},
	ServerInternalError:     {"Internal server error", DomainServer, http.StatusInternalServerError},
	ServerBadRequest:        {"Bad request error", DomainServer, http.StatusBadRequest},

	// Command execution errors
	CommandNotFound:     {"Command not found", DomainCommand, http.StatusNotFound},
	CommandExecution:    {"Command execution failed", DomainCommand, http.StatusBadRequest},
	CommandTimeout:      {"Command execution timed out", DomainCommand, http.StatusGatewayTimeout},
	CommandPermission:   {"Permission denied executing command", DomainCommand, http.StatusForbidden},
	CommandInvalidInput: {"Invalid command input", DomainCommand, http.StatusBadRequest},
	CommandOutputParse:  {"Failed to parse command output", DomainCommand, http.StatusInternalServerError},
	CommandSignal:       {"Command signal handling failed", DomainCommand, http.StatusInternalServerError},
	CommandContext:      {"Command context error", DomainCommand, http.StatusInternalServerError},
	CommandPipe:         {"Command pipe operation failed", DomainCommand, http.StatusInternalServerError},
	CommandWorkDir:      {"Working directory error", DomainCommand, http.StatusInternalServerError},

	// Lifecycle errors
	LifecyclePID:      {"PID file operation failed", DomainLifecycle, http.StatusInternalServerError},
	LifecycleShutdown: {"Error during shutdown process", DomainLifecycle, http.StatusInternalServerError},
	LifecycleSignal:   {"Signal handling error", DomainLifecycle, http.StatusInternalServerError},
	LifecycleReload:   {"Configuration reload failed", DomainLifecycle, http.StatusInternalServerError},
	LifecycleHook:     {"Lifecycle hook execution failed", DomainLifecycle, http.StatusInternalServerError},
	LifecycleState:    {"Invalid lifecycle state transition", DomainLifecycle, http.StatusInternalServerError},
	LifecycleLock:     {"Failed to acquire lifecycle lock", DomainLifecycle, http.StatusInternalServerError},
	LifecycleCleanup:  {"Lifecycle cleanup failed", DomainLifecycle, http.StatusInternalServerError},
	LifecycleDaemon:   {"Daemon operation failed", DomainLifecycle, http.StatusInternalServerError},
	LifecycleResource: {"Resource management error", DomainLifecycle, http.StatusInternalServerError},
}
