/*
Package seamcarve is a content aware image shrinking library. It reduces the
width and the height of an image by repeatedly removing the connected path
of pixels (the seam) carrying the least energy, so the important parts of
the image are left untouched.

The package provides a command line interface, supporting various flags for different types of rescaling operations.
To check the supported commands type:

	$ seamcarve --help

In case you wish to integrate the API in a self constructed environment here is a simple example:

	package main

	import (
		"log"
		"os"

		"github.com/esiegel/seamcarve"
	)

	func main() {
		p := &seamcarve.Processor{
			NewWidth:  400,
			NewHeight: 300,
		}

		if err := p.Process(os.Stdin, os.Stdout, seamcarve.PNG); err != nil {
			log.Fatalf("Error rescaling image: %v", err)
		}
	}
*/
package seamcarve
