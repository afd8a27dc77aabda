package main

import (
	"context"
	"log"

	"github.com/dogmatiq/dodeca/logging"
	"github.com/jmalloc/beacon/src/beacon/mdns"
	"github.com/jmalloc/beacon/src/beacon/mdns/driver"
)

func main() {
	info, err := mdns.NewServiceInfo(
		"_beacon._udp.local",
		"sandbox",
		"sandbox.local",
		[4]byte{192, 168, 60, 36},
		7000,
		mdns.WithText("path=/sandbox"),
	)
	if err != nil {
		log.Fatal(err)
	}

	engine := mdns.NewServer(
		[]mdns.ServiceInfo{info},
		mdns.WithLogger(logging.DebugLogger),
	)

	d, err := driver.New(
		engine,
		driver.UseLogger(logging.DebugLogger),
	)
	if err != nil {
		log.Fatal(err)
	}

	go func() {
		for svc := range d.Remotes() {
			svc := svc
			log.Printf("discovered: %s", &svc)
		}
	}()

	if err := d.Run(context.Background()); err != nil {
		log.Fatal(err)
	}
}
