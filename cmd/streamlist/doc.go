// Command streamlist resolves movie titles to streaming availability from the
// command line.
//
//	streamlist resolve "Heat" "Parasite"      resolve titles and print a table
//	streamlist resolve --file titles.txt      one title per line
//	streamlist import <letterboxd-url>        list titles from a Letterboxd list
//	streamlist services                       show the service taxonomy
//	streamlist serve                          run the HTTP API in the foreground
//	streamlist config init|validate           manage the configuration file
//
// Every command that talks to a catalog loads configuration first; --json
// switches output to indented JSON.
package main
