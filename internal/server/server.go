// Package server assembles the API handlers over a store.
package server

import (
	bookinghandler "innkeep/internal/bookings/handler"
	bookingservice "innkeep/internal/bookings/service"
	bookingvalidator "innkeep/internal/bookings/validator"
	hotelhandler "innkeep/internal/hotels/handler"
	hotelservice "innkeep/internal/hotels/service"
	hotelvalidator "innkeep/internal/hotels/validator"
	roomhandler "innkeep/internal/rooms/handler"
	roomservice "innkeep/internal/rooms/service"
	roomvalidator "innkeep/internal/rooms/validator"
	"innkeep/internal/store"
	"innkeep/pkg/config"
	"innkeep/pkg/contracts"
)

func Handlers(st store.Store, cfg *config.Config, bookingOpts ...bookingservice.Option) []contracts.Handler {
	hotels := hotelservice.NewHotelService(st, hotelvalidator.NewHotelValidator(cfg.Log), cfg)
	rooms := roomservice.NewRoomService(st, roomvalidator.NewRoomValidator(cfg.Log), cfg)
	bookings := bookingservice.NewBookingService(st, bookingvalidator.NewBookingValidator(cfg.Log), cfg, bookingOpts...)

	return []contracts.Handler{
		hotelhandler.NewHotelHandler(hotels, cfg.Log),
		roomhandler.NewRoomHandler(rooms, cfg.Log),
		bookinghandler.NewBookingHandler(bookings, cfg.Log),
	}
}

// Checks returns the readiness checks for st.
func Checks(st store.Store) map[string]contracts.Pinger {
	return map[string]contracts.Pinger{"store": st}
}
