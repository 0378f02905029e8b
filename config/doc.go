// Copyright 2022 The stampede Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package config resolves the retry configuration used by the retrying
HTTP client.

A Config pairs a retry policy, which bounds how many attempts a request
gets, with a backoff policy, which sets the pause between attempts.
Either half may be disabled.

Resolver produces a Config from the first source that has one:

 1. An explicit Config supplied by the caller, used as is.
 2. The file named by the STAMPEDE_CONFIG environment variable, if set.
 3. The first stampede.yml found in the search root or any directory
    above it, and failing that in the user's home directory.
 4. The built-in defaults returned by Default.

A configuration file looks like this:

	retry_config:
	  retry_enabled: true
	  retry_policy:
	    type: fixed
	    max_attempts: 5
	  backoff_enabled: true
	  backoff_policy:
	    type: fibonacci
	    initial_delay: 0
	    maximum_delay: 144

Delays are either a number of seconds or a duration string such as
"250ms". A file that exists but cannot be decoded is reported as a
*ParseError and never replaced by the defaults.
*/
package config
