package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"ladder/internal/engine"
	ladderNet "ladder/internal/net"
)

const reportFixedHeaderLen = 1 + 16 + 1 + 8 + 8 + 8 + 8 + 4

func main() {
	serverAddr := flag.String("server", "127.0.0.1:9001", "Address of the exchange server")
	owner := flag.String("owner", "", "Owner name (compulsory)")
	action := flag.String("action", "place", "Action to perform: ['place', 'cancel', 'modify', 'log']")

	sideStr := flag.String("side", "buy", "Order side: 'buy' or 'sell'")
	price := flag.Int64("price", 10000, "Limit price, in integer cents")
	qtyStr := flag.String("qty", "10", "Quantity or comma-separated list (e.g. 10,20,50)")

	orderID := flag.Uint64("id", 0, "Order id to cancel/modify")
	newPrice := flag.Int64("new-price", 0, "New price for modify (defaults to -price)")
	newQty := flag.Uint64("new-qty", 0, "New quantity for modify")

	flag.Parse()

	if *owner == "" {
		fmt.Println("Error: -owner is compulsory.")
		flag.Usage()
		os.Exit(1)
	}

	conn, err := net.Dial("tcp", *serverAddr)
	if err != nil {
		log.Fatalf("Failed to connect to server at %s: %v", *serverAddr, err)
	}
	defer conn.Close()
	fmt.Printf("Connected to %s as '%s'\n", *serverAddr, *owner)

	go readReports(conn)

	side := engine.Buy
	if strings.ToLower(*sideStr) == "sell" {
		side = engine.Sell
	}

	switch strings.ToLower(*action) {
	case "place":
		for _, q := range parseQuantities(*qtyStr) {
			if err := sendPlaceOrder(conn, *owner, *price, q, side); err != nil {
				log.Printf("Failed to place order (Qty: %d): %v", q, err)
			} else {
				fmt.Printf("-> Sent %s order: %d @ %d\n", strings.ToUpper(*sideStr), q, *price)
			}
			time.Sleep(5 * time.Millisecond)
		}

	case "cancel":
		if *orderID == 0 {
			log.Fatal("Error: -id is required for cancellation")
		}
		if err := sendCancelOrder(conn, *orderID); err != nil {
			log.Printf("Failed to send cancel request: %v", err)
		} else {
			fmt.Printf("-> Sent cancel request for order %d\n", *orderID)
		}

	case "modify":
		if *orderID == 0 {
			log.Fatal("Error: -id is required for modify")
		}
		np := *newPrice
		if np == 0 {
			np = *price
		}
		if err := sendModifyOrder(conn, *orderID, np, *newQty); err != nil {
			log.Printf("Failed to send modify request: %v", err)
		} else {
			fmt.Printf("-> Sent modify request for order %d: price=%d qty=%d\n", *orderID, np, *newQty)
		}

	case "log":
		if err := sendLog(conn); err != nil {
			log.Printf("Failed to send log request: %v", err)
		} else {
			fmt.Println("-> Sent log request")
		}

	default:
		log.Fatalf("Unknown action: %s", *action)
	}

	fmt.Println("\nListening for reports... (Press Ctrl+C to exit)")
	select {}
}

func parseQuantities(input string) []uint64 {
	var result []uint64
	for _, p := range strings.Split(input, ",") {
		p = strings.TrimSpace(p)
		if val, err := strconv.ParseUint(p, 10, 64); err == nil {
			result = append(result, val)
		} else {
			log.Printf("Warning: invalid quantity '%s', skipping.", p)
		}
	}
	return result
}

func sendPlaceOrder(conn net.Conn, owner string, price int64, qty uint64, side engine.Side) error {
	ownerLen := len(owner)
	totalLen := ladderNet.BaseMessageHeaderLen + ladderNet.NewOrderMessageHeaderLen + ownerLen
	buf := make([]byte, totalLen)

	binary.BigEndian.PutUint16(buf[0:2], uint16(ladderNet.NewOrder))
	buf[2] = byte(side)
	binary.BigEndian.PutUint64(buf[3:11], uint64(price))
	binary.BigEndian.PutUint64(buf[11:19], qty)
	correlationID := uuid.New()
	copy(buf[19:35], correlationID[:])
	buf[35] = uint8(ownerLen)
	copy(buf[36:], owner)

	_, err := conn.Write(buf)
	return err
}

func sendCancelOrder(conn net.Conn, id uint64) error {
	buf := make([]byte, ladderNet.BaseMessageHeaderLen+ladderNet.CancelOrderMessageHeaderLen)
	binary.BigEndian.PutUint16(buf[0:2], uint16(ladderNet.CancelOrder))
	binary.BigEndian.PutUint64(buf[2:10], id)
	correlationID := uuid.New()
	copy(buf[10:26], correlationID[:])
	_, err := conn.Write(buf)
	return err
}

func sendModifyOrder(conn net.Conn, id uint64, newPrice int64, newQty uint64) error {
	buf := make([]byte, ladderNet.BaseMessageHeaderLen+ladderNet.ModifyOrderMessageHeaderLen)
	binary.BigEndian.PutUint16(buf[0:2], uint16(ladderNet.ModifyOrder))
	binary.BigEndian.PutUint64(buf[2:10], id)
	binary.BigEndian.PutUint64(buf[10:18], uint64(newPrice))
	binary.BigEndian.PutUint64(buf[18:26], newQty)
	correlationID := uuid.New()
	copy(buf[26:42], correlationID[:])
	_, err := conn.Write(buf)
	return err
}

func sendLog(conn net.Conn) error {
	buf := make([]byte, ladderNet.BaseMessageHeaderLen)
	binary.BigEndian.PutUint16(buf[0:2], uint16(ladderNet.LogBook))
	_, err := conn.Write(buf)
	return err
}

// readReports continuously reads and prints Report messages from the server.
func readReports(conn net.Conn) {
	for {
		headerBuf := make([]byte, reportFixedHeaderLen)
		if _, err := io.ReadFull(conn, headerBuf); err != nil {
			if err != io.EOF {
				log.Printf("Connection lost: %v", err)
			}
			os.Exit(0)
		}

		msgType := ladderNet.ReportMessageType(headerBuf[0])
		side := engine.Side(headerBuf[17])
		price := int64(binary.BigEndian.Uint64(headerBuf[18:26]))
		qty := binary.BigEndian.Uint64(headerBuf[26:34])
		maker := binary.BigEndian.Uint64(headerBuf[34:42])
		taker := binary.BigEndian.Uint64(headerBuf[42:50])
		errStrLen := binary.BigEndian.Uint32(headerBuf[50:54])

		errStr := ""
		if errStrLen > 0 {
			errBuf := make([]byte, errStrLen)
			if _, err := io.ReadFull(conn, errBuf); err != nil {
				log.Printf("Error reading report body: %v", err)
				return
			}
			errStr = string(errBuf)
		}

		if msgType == ladderNet.ErrorReport {
			fmt.Printf("\n[ERROR] %s\n", errStr)
			continue
		}

		sideStr := "BUY"
		if side == engine.Sell {
			sideStr = "SELL"
		}
		fmt.Printf("\n[EXECUTION] %s | price=%d qty=%d | maker=%d taker=%d\n",
			sideStr, price, qty, maker, taker)
	}
}
