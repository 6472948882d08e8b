// Package influxdb records gadget lifecycle metrics in InfluxDB.
//
// Two measurements are written:
//
//	gadget_transition  one point per committed transition
//	                   tags: event, old_status, new_status
//	                   fields: count=1, gadget_id
//	gadget_inventory   periodic per-status snapshot
//	                   tags: status
//	                   fields: count
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	// *Client is a gadget.EventPublisher
//	svc := gadget.NewService(gadget.ServiceDeps{Publisher: client, ...})
//
// Writes are non-blocking and batched according to batch_size and
// flush_interval. Asynchronous failures are delivered to SetOnError.
package influxdb
