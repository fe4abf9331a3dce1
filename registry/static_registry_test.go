package registry

import "testing"

func TestStaticRegistryRegisterAndDiscover(t *testing.T) {
	reg := NewStaticRegistry()

	inst1 := HostInstance{Addr: "127.0.0.1:5001", Weight: 10, Region: "us-east"}
	inst2 := HostInstance{Addr: "127.0.0.1:5002", Weight: 5, Region: "us-east"}

	if err := reg.Register("hdb", inst1, 10); err != nil {
		t.Fatal(err)
	}
	if err := reg.Register("hdb", inst2, 10); err != nil {
		t.Fatal(err)
	}

	instances, err := reg.Discover("hdb")
	if err != nil {
		t.Fatal(err)
	}
	if len(instances) != 2 {
		t.Fatalf("expect 2 instances, got %d", len(instances))
	}

	if err := reg.Deregister("hdb", inst1.Addr); err != nil {
		t.Fatal(err)
	}
	instances, err = reg.Discover("hdb")
	if err != nil {
		t.Fatal(err)
	}
	if len(instances) != 1 || instances[0].Addr != inst2.Addr {
		t.Fatalf("expect only %s remaining, got %+v", inst2.Addr, instances)
	}
}

func TestStaticRegistryReRegisterUpdatesInPlace(t *testing.T) {
	reg := NewStaticRegistry()
	if err := reg.Register("hdb", HostInstance{Addr: "127.0.0.1:5001", Weight: 1}, 10); err != nil {
		t.Fatal(err)
	}
	if err := reg.Register("hdb", HostInstance{Addr: "127.0.0.1:5001", Weight: 9}, 10); err != nil {
		t.Fatal(err)
	}
	instances, err := reg.Discover("hdb")
	if err != nil {
		t.Fatal(err)
	}
	if len(instances) != 1 {
		t.Fatalf("expect re-register to update in place, got %d instances", len(instances))
	}
	if instances[0].Weight != 9 {
		t.Fatalf("expect updated weight 9, got %d", instances[0].Weight)
	}
}

func TestStaticRegistryDiscoverUnknownCluster(t *testing.T) {
	reg := NewStaticRegistry()
	instances, err := reg.Discover("nonexistent")
	if err != nil {
		t.Fatal(err)
	}
	if len(instances) != 0 {
		t.Fatalf("expect no instances, got %d", len(instances))
	}
}
