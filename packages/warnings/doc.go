// Package warnings implements the filterwarnings half of the session
// configuration: parsing filter rules, recovering warning lines from test
// output, and deciding per warning whether to suppress, report, or
// escalate it into a test failure.
package warnings
