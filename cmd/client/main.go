package main

import (
	"encoding/binary"
	"fmt"
	"net"
	"os"

	"github.com/spf13/cobra"

	"clobengine/internal/common"
	"clobengine/internal/wire"
)

var (
	serverAddr string
	ownerName  string
	sideStr    string
	tifStr     string
	price      uint64
	quantity   uint64
	orderID    uint64
)

func main() {
	root := &cobra.Command{Use: "clob-client", Short: "Drives a matching server over TCP"}
	root.PersistentFlags().StringVar(&serverAddr, "server", "127.0.0.1:9090", "server address")
	root.PersistentFlags().StringVar(&ownerName, "owner", "", "caller identity seed (required)")
	root.MarkPersistentFlagRequired("owner")

	placeCmd := &cobra.Command{Use: "place", Short: "Place a limit order", RunE: runPlace}
	placeCmd.Flags().StringVar(&sideStr, "side", "bid", "bid or ask")
	placeCmd.Flags().Uint64Var(&price, "price", 0, "price in quote ticks")
	placeCmd.Flags().Uint64Var(&quantity, "qty", 0, "quantity in base lots")
	placeCmd.Flags().StringVar(&tifStr, "tif", "GTC", "GTC, IOC, or FOK")

	cancelCmd := &cobra.Command{Use: "cancel", Short: "Cancel a resting order", RunE: runCancel}
	cancelCmd.Flags().StringVar(&sideStr, "side", "bid", "bid or ask")
	cancelCmd.Flags().Uint64Var(&orderID, "order-id", 0, "order id to cancel")

	root.AddCommand(placeCmd, cancelCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func parseSide() common.Side {
	if sideStr == "ask" {
		return common.Ask
	}
	return common.Bid
}

func parseTIF() common.TimeInForce {
	switch tifStr {
	case "IOC":
		return common.IOC
	case "FOK":
		return common.FOK
	default:
		return common.GTC
	}
}

func runPlace(cmd *cobra.Command, args []string) error {
	conn, err := net.Dial("tcp", serverAddr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", serverAddr, err)
	}
	defer conn.Close()

	reqID := wire.NewRequestID()
	owner := common.NewIdentity(ownerName)

	buf := make([]byte, wire.BaseHeaderLen+32+1+8+8+1+8)
	binary.BigEndian.PutUint16(buf[0:2], uint16(wire.PlaceLimitOrder))
	copy(buf[2:18], reqID[:])
	copy(buf[18:50], owner[:])
	buf[50] = byte(parseSide())
	binary.BigEndian.PutUint64(buf[51:59], price)
	binary.BigEndian.PutUint64(buf[59:67], quantity)
	buf[67] = byte(parseTIF())
	// WallClock left zero: the server derives its own logical clock when
	// the supplied value doesn't advance it.

	if _, err := conn.Write(buf); err != nil {
		return err
	}
	fmt.Printf("placed order request sent (side=%s price=%d qty=%d tif=%s)\n", sideStr, price, quantity, tifStr)
	return nil
}

func runCancel(cmd *cobra.Command, args []string) error {
	conn, err := net.Dial("tcp", serverAddr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", serverAddr, err)
	}
	defer conn.Close()

	reqID := wire.NewRequestID()
	owner := common.NewIdentity(ownerName)

	buf := make([]byte, wire.BaseHeaderLen+32+1+8)
	binary.BigEndian.PutUint16(buf[0:2], uint16(wire.CancelOrder))
	copy(buf[2:18], reqID[:])
	copy(buf[18:50], owner[:])
	buf[50] = byte(parseSide())
	binary.BigEndian.PutUint64(buf[51:59], orderID)

	if _, err := conn.Write(buf); err != nil {
		return err
	}
	fmt.Printf("cancel request sent (side=%s order_id=%d)\n", sideStr, orderID)
	return nil
}
