/*
Command obs80 selects astrometric observations in the MPC 80 column format.

Contents

  Program overview
  Command line usage
  Selection criteria
  Configuration
  Packages


Program overview

Input is a file of 80 column MPC-format observations.  Output is the subset
of lines matching the criteria given, written exactly as they were read and
in the same order.

The MPC observation format is documented at
https://www.minorplanetcenter.net/iau/info/OpticalObs.html.  This is an ASCII
encoded format.  There is no allowance for non-ASCII characters.

Lines that do not decode are not fatal.  Each is logged with its line number
and skipped, unless --fail-fast is given.

Sample run:

Here are three lines, the last one cut short.

     K03A01B  C2003 01 05.5     00 40 00.00 +05 00 00.0          18.5 V      568
00433         C2003 01 06.12345 12 40 00.00 -05 00 00.0                r     704
00433J98S01A*KC1998 09 27.23456 23 59

Put them in a file, say sample.obs, then type

  obs80 filter --center 10,5 --radius 1 sample.obs

and get the first line back.  A warning is logged for line 3.


Command line usage

  obs80 filter [flags] <obsfile|->   Write the matching observations.
  obs80 list <obsfile|->             List decoded fields.
  obs80 check <obsfile|->            Count observations by site.
  obs80 obscodes [file]              Fetch obscode.dat from the MPC.

Use - to read stdin.  Filter writes to stdout, or to the file given with -o.
With --sqlite the subset is also stored in a SQLite database, one row per
observation with the designation, MJD, RA and Dec in degrees, magnitude,
band, observatory code, and the line itself.


Selection criteria

Criteria combine with AND.  Repeated values of one criterion, such as two
--site flags, combine with OR.

  --center ra,dec --radius r   cone, great circle distance <= r, degrees
  --from t --to t              time window, from inclusive, to exclusive
  --desig d                    designation, packed or not: K03A01B, 2003 AB1,
                               433, (433), 1P, C/1995 O1
  --pattern p                  glob on the unpacked designation, "2003 A*"
  --site code                  observatory code
  --mag-min m --mag-max m      magnitude range, inclusive.  Observations
                               without a magnitude do not match.
  --box a,b,c,d                RA from a to b, Dec from c to d, degrees,
                               inclusive.  RA wraps through 0 when a > b.

Times are RFC 3339, YYYY-MM-DD meaning 0h UTC, or mjd:N.

The same criteria can be kept in a YAML file given with --criteria.
Flags override values from the file.

  center: [10, 5]
  radius: 1
  from: "2003-01-01"
  to: "mjd:52700"
  designations: ["433", "2003 AB1"]
  obscodes: ["568", "704"]
  mag_max: 20
  box: {ra_min: 350, ra_max: 10, dec_min: -5, dec_max: 5}

The box selects an RA/Dec rectangle.  When ra_min > ra_max the RA range
wraps through 0.


Configuration

Settings come from the environment.

  OBS80_LOG_LEVEL   debug, info, warn, error.  Default info.
  OBS80_LOG_FORMAT  text or json.  Default text.
  OBS80_OBSCODES    obscode.dat location, read by check, written by obscodes.
  OBS80_WORKERS     decode goroutines for filter.  Default one per CPU.


Packages

Package mpc decodes and encodes the 80 column format, package filter
selects records, and package sky holds the coordinate and time values they
share.  The command is a thin layer over these.

-------------
Public domain.
*/
package main
